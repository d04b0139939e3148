package generator

import (
	"context"
	"log"
	"time"
)

// StartPoller regenerates outputPath from src every interval until ctx is
// done. A failed poll keeps the last written page.
func StartPoller(ctx context.Context, src Source, outputPath string, interval time.Duration, opts Options) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Printf("[poller] stopped")
				return
			case <-t.C:
				if err := pollAndWrite(ctx, src, outputPath, opts); err != nil {
					log.Printf("[poller] poll error: %v", err)
				}
			}
		}
	}()
	log.Printf("[poller] started, writing to %s every %s", outputPath, interval)
}

func pollAndWrite(ctx context.Context, src Source, outputPath string, opts Options) error {
	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reports, err := src.FetchReports(cctx)
	if err != nil {
		return err
	}
	if err := GenerateMapHTML(reports, outputPath, opts); err != nil {
		return err
	}
	log.Printf("[poller] %d reports written to %s", len(reports), outputPath)
	return nil
}
