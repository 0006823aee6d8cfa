package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tribshms/gotribs/internal/runstats"
)

// RunOptions configure one simulation launch.
type RunOptions struct {
	Executable  string
	ControlFile string

	// MPICommand prefixes the launch for parallel runs, e.g.
	// "mpirun -n 4".
	MPICommand string
	Flags      []string

	// LogDir tees simulator output into a .out file; StoreInput
	// archives a copy of the control file next to the run.
	LogDir     string
	StoreInput string
}

// Run launches the simulator, streaming its output to the log and the
// optional log file, and records the wall time as a pipeline stage.
func Run(ctx context.Context, opts RunOptions, stats *runstats.Collector, log *slog.Logger) error {
	if opts.Executable == "" {
		return fmt.Errorf("no simulator executable given")
	}
	if _, err := os.Stat(opts.ControlFile); err != nil {
		return fmt.Errorf("control file: %w", err)
	}

	if opts.StoreInput != "" {
		if err := archiveControlFile(opts.ControlFile, opts.StoreInput); err != nil {
			return err
		}
	}

	argv := commandLine(opts)
	log.Info("launching simulation",
		slog.String("command", strings.Join(argv, " ")))

	var logFile *os.File
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		base := strings.TrimSuffix(filepath.Base(opts.ControlFile), filepath.Ext(opts.ControlFile))
		path := filepath.Join(opts.LogDir, base+".out")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create log file: %w", err)
		}
		defer f.Close()
		logFile = f
	}

	return stats.Observe("simulation", func() error {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

		pr, pw := io.Pipe()
		cmd.Stdout = pw
		cmd.Stderr = pw

		if err := cmd.Start(); err != nil {
			pw.Close()
			return fmt.Errorf("start simulator: %w", err)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			scanner := bufio.NewScanner(pr)
			for scanner.Scan() {
				line := scanner.Text()
				log.Info(line)
				if logFile != nil {
					fmt.Fprintln(logFile, line)
				}
			}
		}()

		err := cmd.Wait()
		pw.Close()
		<-done
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		return nil
	})
}

// commandLine assembles the launch argv, MPI prefix first.
func commandLine(opts RunOptions) []string {
	var argv []string
	if opts.MPICommand != "" {
		argv = append(argv, strings.Fields(opts.MPICommand)...)
	}
	argv = append(argv, opts.Executable, opts.ControlFile)
	argv = append(argv, opts.Flags...)
	return argv
}

// archiveControlFile copies the control file into dir with a timestamp
// so reruns keep their exact inputs.
func archiveControlFile(controlFile, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	data, err := os.ReadFile(controlFile)
	if err != nil {
		return fmt.Errorf("read control file: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	name := fmt.Sprintf("%s.%s", filepath.Base(controlFile), stamp)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("archive control file: %w", err)
	}
	return nil
}

// BuildOptions configure a simulator build from source.
type BuildOptions struct {
	SourceDir  string
	BuildDir   string
	Executable string // target name, default tRIBS
	Parallel   bool
	CXXFlags   string // default -O2

	// CMake is the cmake binary, overridable for testing.
	CMake string
}

// Build configures and compiles the simulator with cmake.
func Build(ctx context.Context, opts BuildOptions, log *slog.Logger) error {
	if opts.SourceDir == "" || opts.BuildDir == "" {
		return fmt.Errorf("both source and build directories are required")
	}
	if opts.Executable == "" {
		opts.Executable = "tRIBS"
	}
	if opts.CXXFlags == "" {
		opts.CXXFlags = "-O2"
	}
	if opts.CMake == "" {
		opts.CMake = "cmake"
	}

	parallel := "OFF"
	if opts.Parallel {
		parallel = "ON"
	}

	configure := []string{
		"-S", opts.SourceDir,
		"-B", opts.BuildDir,
		"-DPARALLEL=" + parallel,
		"-DCMAKE_CXX_FLAGS=" + opts.CXXFlags,
		"-DEXECUTABLE_NAME=" + opts.Executable,
	}
	log.Info("configuring build", slog.String("build_dir", opts.BuildDir))
	if err := runLogged(ctx, log, opts.CMake, configure...); err != nil {
		return fmt.Errorf("cmake configure: %w", err)
	}

	log.Info("compiling", slog.String("target", opts.Executable))
	if err := runLogged(ctx, log, opts.CMake, "--build", opts.BuildDir); err != nil {
		return fmt.Errorf("cmake build: %w", err)
	}
	return nil
}

func runLogged(ctx context.Context, log *slog.Logger, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			log.Info(scanner.Text())
		}
	}()

	err := cmd.Wait()
	pw.Close()
	<-done
	return err
}
