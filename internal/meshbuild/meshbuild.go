package meshbuild

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultImage is the published MeshBuilder container.
	DefaultImage = "tribs/meshbuilder:latest"

	// containerData is where the host volume is mounted inside the
	// container.
	containerData = "/meshbuild/data"
)

// volumeKeep lists the extensions ScrubVolume preserves after a
// partitioning run.
var volumeKeep = []string{".in", ".points", ".reach", ".out"}

// Runner drives the MeshBuilder container over the docker CLI: ping,
// pull, a long-lived container with the work directory mounted, command
// execution and teardown.
type Runner struct {
	Image  string
	Volume string

	// Bin is the docker binary; PingInterval paces daemon probes.
	Bin          string
	PingInterval time.Duration

	containerID string
	log         *slog.Logger
}

func NewRunner(image, volume string, log *slog.Logger) *Runner {
	if image == "" {
		image = DefaultImage
	}
	return &Runner{
		Image:        image,
		Volume:       volume,
		Bin:          "docker",
		PingInterval: 3 * time.Second,
		log:          log,
	}
}

// Ping probes the docker daemon, retrying with backoff while it comes
// up.
func (r *Runner) Ping(ctx context.Context) error {
	probe := func() error {
		cmd := exec.CommandContext(ctx, r.Bin, "info")
		if err := cmd.Run(); err != nil {
			r.log.Debug("docker daemon not responding", slog.Any("error", err))
			return fmt.Errorf("docker daemon not responding: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.PingInterval
	return backoff.Retry(probe, backoff.WithContext(backoff.WithMaxRetries(bo, 4), ctx))
}

// Pull fetches the MeshBuilder image.
func (r *Runner) Pull(ctx context.Context) error {
	r.log.Info("pulling image", slog.String("image", r.Image))
	if err := r.stream(ctx, r.Bin, "pull", r.Image); err != nil {
		return fmt.Errorf("pull %s: %w", r.Image, err)
	}
	return nil
}

// Start launches a detached container with the volume mounted at the
// data directory and an interactive shell as entrypoint, so repeated
// Exec calls reuse it.
func (r *Runner) Start(ctx context.Context) error {
	volume, err := filepath.Abs(r.Volume)
	if err != nil {
		return fmt.Errorf("resolve volume path: %w", err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Bin, "run", "-d", "-it",
		"--entrypoint", "/bin/bash",
		"-v", volume+":"+containerData,
		r.Image)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("start container: %w", err)
	}

	r.containerID = strings.TrimSpace(out.String())
	if r.containerID == "" {
		return fmt.Errorf("docker run returned no container id")
	}
	r.log.Info("container started", slog.String("id", shortID(r.containerID)))
	return nil
}

// Exec runs a shell command inside the container, streaming its output
// to the log.
func (r *Runner) Exec(ctx context.Context, command string) error {
	if r.containerID == "" {
		return fmt.Errorf("container is not running")
	}
	r.log.Info("exec", slog.String("command", command))
	if err := r.stream(ctx, r.Bin, "exec", r.containerID, "sh", "-c", command); err != nil {
		return fmt.Errorf("exec %q: %w", command, err)
	}
	return nil
}

// Workflow copies the MeshBuilder binaries and helper scripts into the
// data directory, triangulates the point set and partitions the mesh
// with metis for the requested number of compute nodes.
func (r *Runner) Workflow(ctx context.Context, inputFile string, nodes, method int, baseName string) error {
	for _, command := range workflowCommands(inputFile, nodes, method, baseName) {
		if err := r.Exec(ctx, command); err != nil {
			return err
		}
	}
	return nil
}

func workflowCommands(inputFile string, nodes, method int, baseName string) []string {
	return []string{
		"cp src/workflow/* data/",
		"cp build/MeshBuilder data/",
		"cp src/metis_builds/METIS/build/programs/gpmetis data/",
		fmt.Sprintf("cd data && ./MeshBuilder %s && ./run_metis.zsh %s %s %s",
			inputFile, strconv.Itoa(nodes), strconv.Itoa(method), baseName),
	}
}

// Cleanup stops and removes the container.
func (r *Runner) Cleanup(ctx context.Context) error {
	if r.containerID == "" {
		return nil
	}
	r.log.Info("removing container", slog.String("id", shortID(r.containerID)))
	if err := r.stream(ctx, r.Bin, "stop", r.containerID); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	if err := r.stream(ctx, r.Bin, "rm", r.containerID); err != nil {
		return fmt.Errorf("remove container: %w", err)
	}
	r.containerID = ""
	return nil
}

// ScrubVolume deletes the intermediates MeshBuilder leaves in the work
// directory, keeping only the partition inputs and products.
func (r *Runner) ScrubVolume() error {
	entries, err := os.ReadDir(r.Volume)
	if err != nil {
		return fmt.Errorf("read volume: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || keepInVolume(entry.Name()) {
			continue
		}
		path := filepath.Join(r.Volume, entry.Name())
		if err := os.Remove(path); err != nil {
			r.log.Warn("failed to remove intermediate",
				slog.String("path", path), slog.Any("error", err))
		}
	}
	return nil
}

func keepInVolume(name string) bool {
	ext := filepath.Ext(name)
	for _, keep := range volumeKeep {
		if ext == keep {
			return true
		}
	}
	return false
}

// stream runs a command, forwarding each output line to the log.
func (r *Runner) stream(ctx context.Context, bin string, args ...string) error {
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
			r.log.Info(scanner.Text())
		}
	}()

	err := cmd.Wait()
	pw.Close()
	<-done
	return err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Partition runs the full MeshBuilder sequence against a work directory
// holding the .in and .points files, producing the .reach file parallel
// runs need.
func Partition(ctx context.Context, image, volume, inputFile string, nodes, method int,
	baseName string, log *slog.Logger) error {
	r := NewRunner(image, volume, log)

	if err := r.Ping(ctx); err != nil {
		return err
	}
	if err := r.Pull(ctx); err != nil {
		return err
	}
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := r.Cleanup(context.WithoutCancel(ctx)); err != nil {
			log.Warn("container cleanup failed", slog.Any("error", err))
		}
	}()

	return r.Workflow(ctx, inputFile, nodes, method, baseName)
}
