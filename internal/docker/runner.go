// Package docker runs validation commands inside a container so the host
// needs no Node toolchain. The target project is bind-mounted at
// /workspace and the command's combined output is captured for parsing.
package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

type CompileOpts struct {
	Image      string
	Cmd        []string
	ProjectDir string
	Timeout    time.Duration
}

type RunResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Output   string
}

func RunCompile(ctx context.Context, opts *CompileOpts) (*RunResult, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: opts.ProjectDir,
				Target: "/workspace",
			},
		},
	}
	containerCfg := &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Cmd,
		WorkingDir: "/workspace",
		Labels:     map[string]string{"vuebench": "true"},
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	waitResult := cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return &RunResult{
					ExitCode: 124,
					TimedOut: true,
					Duration: time.Since(start),
					Output:   collectLogs(cli, containerID),
				}, nil
			}
			// nil error means no error on this channel; wait for result
		case status := <-waitResult.Result:
			return &RunResult{
				ExitCode: int(status.StatusCode),
				TimedOut: false,
				Duration: time.Since(start),
				Output:   collectLogs(cli, containerID),
			}, nil
		}
	}
}

func collectLogs(cli *client.Client, containerID string) string {
	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil || logReader == nil {
		return ""
	}
	defer logReader.Close()
	data, _ := io.ReadAll(logReader)
	return string(data)
}
