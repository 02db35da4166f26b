package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mtlsdemo/pkg/demo"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/page"

	"golang.org/x/sync/errgroup"
)

var errNoTargets = errors.New("at least one URL is required")

// targetResult is the rendered page for one probed URL.
type targetResult struct {
	URL     string
	Summary string
	Err     error
}

func parseTargets(raw string) ([]string, error) {
	var targets []string
	for _, part := range strings.Split(raw, ",") {
		target := strings.TrimSpace(part)
		if target == "" {
			continue
		}
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			return nil, fmt.Errorf("URL must start with http:// or https://: %s", target)
		}
		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}

// probeAll runs one controller per target concurrently. Results keep the order of targets.
func probeAll(ctx context.Context, targets []string, timeout time.Duration) []targetResult {
	results := make([]targetResult, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = probeTarget(ctx, target, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func probeTarget(ctx context.Context, target string, timeout time.Duration) targetResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := page.New()
	client := demo.NewClient(target, &http.Client{Timeout: timeout})
	controller := demo.NewController(client, p.Widgets())

	start := time.Now()
	err := controller.RunProbe(ctx)

	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err).Str("kind", demo.Kind(err))
	}
	event.Str("url", client.URL()).Dur("duration", time.Since(start)).Msg("Probe finished")

	return targetResult{URL: target, Summary: p.Summary(), Err: err}
}

func writeSummaries(w io.Writer, results []targetResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s\n", r.URL)
		fmt.Fprint(w, r.Summary)
		if !strings.HasSuffix(r.Summary, "\n") {
			fmt.Fprintln(w)
		}
	}
}
