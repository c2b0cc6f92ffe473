// Package scraper walks a reply chain backwards from a starting post.
//
// Each iteration checks the stop-at boundary, fetches the post, finds its
// video (or the video of the post it quotes, one level deep), hands that to
// the downloader, counts the post and then follows the reply parent. A
// failed download is recorded and skipped. A failed fetch ends the walk.
//
// Usage:
//
//	s := scraper.New(client, supervisor, scraper.Options{
//	    Limit:  10,
//	    StopAt: "1629300000000000000",
//	    Logger: log,
//	})
//	out := s.Run(ctx, "1629307668568475652")
//	fmt.Println(out.Message())
//	os.Exit(out.ExitCode())
package scraper
