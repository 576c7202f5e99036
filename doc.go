// Package publishhub orchestrates publishing one piece of content to
// many social platforms at once. A publish request fans out to every
// target platform through its capability-aware adapter; each platform's
// outcome is validated, retried, and tracked independently, and the
// aggregate comes back as a single result.
//
// Basic usage:
//
//	client, err := publishhub.New(publishhub.WithConfig(cfg))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Publish(ctx, &publisher.Request{
//		Text:            "release day!",
//		PostType:        content.PostTypePost,
//		TargetPlatforms: []string{"twitter", "mastodon"},
//		Credentials:     creds,
//	})
package publishhub
