package uci

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
)

// transport is a line-oriented wire to an engine. The process implementation
// talks to a real binary; tests substitute a scripted fake.
type transport interface {
	send(cmd string) error
	lines() <-chan string
	close() error
}

// process wraps a spawned engine binary. Stdout is pumped into a channel by
// a dedicated goroutine so the pool worker can select over it with a timer.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   chan string
}

func startProcess(path string, args ...string) (*process, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}

	p := &process{
		cmd:   cmd,
		stdin: stdin,
		out:   make(chan string, 256),
	}
	go func() {
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			p.out <- sc.Text()
		}
		close(p.out)
	}()
	return p, nil
}

func (p *process) send(cmd string) error {
	_, err := fmt.Fprintln(p.stdin, cmd)
	return err
}

func (p *process) lines() <-chan string {
	return p.out
}

func (p *process) close() error {
	_ = p.send("quit")
	_ = p.stdin.Close()
	return p.cmd.Wait()
}
