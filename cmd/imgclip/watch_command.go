package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/notify"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var hf hostFlags

	cmd := &cobra.Command{
		Use:   "watch KEY...",
		Short: "Print options again whenever a config file changes them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			// Reload events arrive while the stack holds its lock, so
			// printing happens on the notifier's own goroutine.
			n := notify.New(notify.WithAsync(16))
			defer n.Close()

			stack, r, err := ctx.load(cmd.Context(), hf.host(), true, config.WithNotifier(n))
			if err != nil {
				return err
			}
			defer r.Close()
			defer stack.Close()

			out := cmd.OutOrStdout()
			for _, path := range stack.WatchedFiles() {
				fmt.Fprintf(out, "watching %s\n", path)
			}
			return watchKeys(cmd.Context(), out, r, keys)
		},
	}

	hf.register(cmd)
	return cmd
}

// watchKeys prints keys, then reprints the ones whose value changed after
// every reload until ctx is done.
func watchKeys(ctx context.Context, w io.Writer, r *config.Resolver, keys []string) error {
	reloads := make(chan struct{}, 1)
	sub := r.Notifier().Subscribe(func(c notify.Change) {
		if c.Type != notify.ChangeReload {
			return
		}
		select {
		case reloads <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	last := resolveKeys(r, keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%s: %s\n", key, last[key])
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloads:
			current := resolveKeys(r, keys)
			var changed []string
			for _, key := range keys {
				if current[key] != last[key] {
					changed = append(changed, key)
				}
			}
			last = current
			if len(changed) == 0 {
				continue
			}

			fmt.Fprintf(w, "--- reloaded %s\n", time.Now().Format(time.TimeOnly))
			for _, key := range changed {
				fmt.Fprintf(w, "%s: %s\n", key, current[key])
			}
		}
	}
}

// resolveKeys formats the current value of each key.
func resolveKeys(r *config.Resolver, keys []string) map[string]string {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, ok := r.Get(key, nil, nil)
		if !ok {
			values[key] = "(not found)"
			continue
		}
		values[key] = formatValue(v)
	}
	return values
}
