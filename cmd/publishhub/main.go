// Command publishhub is the CLI front end of the orchestrator: publish
// or preview content across platforms and inspect platform capabilities.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kart-io/publishhub"
	"github.com/kart-io/publishhub/pkg/config"
	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/publisher"
)

var (
	configPath string
	verbose    bool

	textFlag     string
	postTypeFlag string
	targetsFlag  []string
	mediaFlag    []string
	dryRun       bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "publishhub",
		Short:         "Publish content to many social platforms at once",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newCapsCommand())
	return cmd
}

func newClient() (*publishhub.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logger.Debug
	}
	log := logger.NewCharmLogger(charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix:          "publishhub",
		ReportTimestamp: true,
	}), level)

	return publishhub.New(publishhub.WithConfig(cfg), publishhub.WithLogger(log))
}

func buildRequest() (*publisher.Request, error) {
	if textFlag == "" && len(mediaFlag) == 0 {
		return nil, fmt.Errorf("provide --text or --media")
	}
	if len(targetsFlag) == 0 {
		return nil, fmt.Errorf("provide at least one --target")
	}

	media := make([]content.MediaRef, 0, len(mediaFlag))
	for _, raw := range mediaFlag {
		// Media flags take the form kind=url, e.g. image=https://...
		kind, url, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("media %q must be kind=url", raw)
		}
		media = append(media, content.MediaRef{Kind: content.MediaKind(kind), URL: url})
	}

	creds := make(map[string]platform.Credential, len(targetsFlag))
	for _, target := range targetsFlag {
		token := os.Getenv(strings.ToUpper(target) + "_ACCESS_TOKEN")
		creds[target] = platform.Credential{AccessToken: token}
	}

	return &publisher.Request{
		Text:            textFlag,
		Media:           media,
		PostType:        content.PostType(postTypeFlag),
		TargetPlatforms: targetsFlag,
		Credentials:     creds,
	}, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&textFlag, "text", "t", "", "Content text")
	cmd.Flags().StringVar(&postTypeFlag, "type", "post", "Post type (post, thread, story, reel, carousel, slideshow, video, pin)")
	cmd.Flags().StringSliceVar(&targetsFlag, "target", nil, "Target platform (repeatable)")
	cmd.Flags().StringSliceVar(&mediaFlag, "media", nil, "Media attachment as kind=url (repeatable)")
	cmd.Flags().SortFlags = false
}

func newPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish content to the target platforms",
		Example: `  publishhub publish -t "release day!" --target twitter --target mastodon
  publishhub publish -t "long update..." --type thread --target twitter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest()
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if dryRun {
				return printPreview(cmd, client, req)
			}

			result, err := client.Publish(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, outcome := range result.Outcomes {
				switch {
				case outcome.Succeeded():
					fmt.Fprintf(out, "%s: published (%s)\n", outcome.Platform, outcome.ExternalID)
				case outcome.Error != nil:
					fmt.Fprintf(out, "%s: %s - %s\n", outcome.Platform, outcome.Status, outcome.Error.Message)
				default:
					fmt.Fprintf(out, "%s: %s\n", outcome.Platform, outcome.Status)
				}
			}
			fmt.Fprintf(out, "result: %s (%d/%d succeeded)\n", result.Status, result.Succeeded, len(result.Outcomes))

			if result.Status == publisher.ResultFailed {
				return fmt.Errorf("all platforms failed")
			}
			return nil
		},
	}

	addRequestFlags(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Format and validate without publishing")
	return cmd
}

func newPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the per-platform payloads without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest()
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return printPreview(cmd, client, req)
		},
	}

	addRequestFlags(cmd)
	return cmd
}

func printPreview(cmd *cobra.Command, client *publishhub.Client, req *publisher.Request) error {
	posts, failures := client.Preview(req)
	out := cmd.OutOrStdout()

	names := make([]string, 0, len(posts))
	for name := range posts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		post := posts[name]
		fmt.Fprintf(out, "%s (%d chunk(s)):\n", name, len(post.Chunks))
		for i, chunk := range post.Chunks {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, chunk)
		}
	}
	for name, err := range failures {
		fmt.Fprintf(out, "%s: %v\n", name, err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d platform(s) rejected the content", len(failures))
	}
	return nil
}

func newCapsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "caps [platform]",
		Short: "Show platform capabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range client.Platforms() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			caps, err := client.Capabilities(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(caps, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
}
