package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/formatter"
	"github.com/gnolang/mtlin/internal"
	tt "github.com/gnolang/mtlin/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Lint Ruby files again whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, engine, args, cmd.OutOrStdout())
	},
}

// runWatch reports the issues of every changed file until ctx is done.
func runWatch(ctx context.Context, engine *internal.Engine, dirs []string, out io.Writer) error {
	var mu sync.Mutex
	engine.WatchDirs(dirs...)
	engine.OnIssues(func(filename string, issues []tt.Issue) {
		mu.Lock()
		defer mu.Unlock()
		printWatchedIssues(out, filename, issues)
	})

	if err := engine.StartWatching(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Watching %v for changes, press Ctrl+C to stop\n", dirs)

	<-ctx.Done()
	return engine.StopWatching()
}

func printWatchedIssues(out io.Writer, filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(out, "%s: no issues\n", filename)
		return
	}
	sourceCode, err := internal.ReadSourceCode(filename)
	if err != nil {
		logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
		return
	}
	fmt.Fprintln(out, formatter.GenerateFormattedIssue(issues, sourceCode))
}
