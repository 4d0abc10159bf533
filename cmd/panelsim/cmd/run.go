package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/go-drift/virtualize/pkg/config"
	"github.com/go-drift/virtualize/pkg/debugviz"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Play a scenario file",
		Long: `Play a scenario against the virtualization engine.

Every step mutates the data, the viewport or the engine and is followed by
a layout pass. One line is printed per pass with the realized ranges, the
visible window, recycling statistics and the classified transition.

Flags:
  --png <file>   Write the final arrangement as a PNG image
  --labels       Label elements in the PNG with their data index`,
		Usage: "panelsim run <scenario.yaml> [--png out.png] [--labels]",
		Run:   runScenario,
	})
}

type runOptions struct {
	path   string
	png    string
	labels bool
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--png":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--png requires a file name")
			}
			i++
			opts.png = args[i]
		case "--labels":
			opts.labels = true
		default:
			if opts.path != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.path = arg
		}
	}
	if opts.path == "" {
		return opts, fmt.Errorf("missing scenario file")
	}
	return opts, nil
}

// playScenario plays sim, turning a panic inside the engine into an error.
func playScenario(ctx context.Context, sim *simulator) (err error) {
	defer drifterrors.RecoverInto("panelsim.run", &err)
	return sim.play(ctx)
}

func runScenario(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(stdout, "run %s: %s, %d steps\n", uuid.NewString(), opts.path, len(cfg.Scenario.Steps))
	sim := newSimulator(cfg, stdout)
	defer sim.close()
	if err := playScenario(ctx, sim); err != nil {
		return err
	}

	if opts.png != "" {
		frame := debugviz.Capture(sim.engine)
		if err := debugviz.WriteFile(opts.png, frame, debugviz.Options{Labels: opts.labels}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.png)
	}
	return nil
}
