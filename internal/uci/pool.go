package uci

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pool serializes access to one engine process. Requests queue in arrival
// order through a channel and a single worker services them, so two rooms
// asking for a move at once never interleave commands on the wire.
type Pool struct {
	log     *zap.Logger
	tr      transport
	timeout time.Duration

	reqs chan request
	done chan struct{}
	once sync.Once

	// bestmove lines still owed by timed-out searches. Worker-only.
	stale int
}

type request struct {
	fen        string
	difficulty int
	reply      chan result
}

type result struct {
	move string
	ok   bool
}

// NewPool spawns the engine binary, performs the UCI handshake, and starts
// the worker.
func NewPool(log *zap.Logger, path string, timeout time.Duration) (*Pool, error) {
	tr, err := startProcess(path)
	if err != nil {
		return nil, err
	}
	p := newPool(log, tr, timeout)
	if err := p.handshake(); err != nil {
		_ = tr.close()
		return nil, err
	}
	go p.worker()
	return p, nil
}

// newPool wires a pool around an existing transport without starting the
// worker; NewPool and the tests start it themselves.
func newPool(log *zap.Logger, tr transport, timeout time.Duration) *Pool {
	return &Pool{
		log:     log,
		tr:      tr,
		timeout: timeout,
		reqs:    make(chan request),
		done:    make(chan struct{}),
	}
}

func (p *Pool) handshake() error {
	if err := p.tr.send("uci"); err != nil {
		return err
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case line, open := <-p.tr.lines():
			if !open {
				return fmt.Errorf("engine closed during handshake")
			}
			if line == "uciok" {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("engine never sent uciok")
		}
	}
}

// BestMove asks the engine for a reply in the given position. A false return
// means the search timed out, the context expired, or the pool is closed;
// the caller decides what a missing move means.
func (p *Pool) BestMove(ctx context.Context, fen string, difficulty int) (string, bool) {
	req := request{fen: fen, difficulty: difficulty, reply: make(chan result, 1)}
	select {
	case p.reqs <- req:
	case <-ctx.Done():
		return "", false
	case <-p.done:
		return "", false
	}
	select {
	case r := <-req.reply:
		return r.move, r.ok
	case <-ctx.Done():
		return "", false
	case <-p.done:
		return "", false
	}
}

// Close stops the worker and the engine process.
func (p *Pool) Close() error {
	p.once.Do(func() { close(p.done) })
	return p.tr.close()
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.done:
			return
		case req := <-p.reqs:
			// reply is buffered, an abandoned caller never blocks the worker
			req.reply <- p.search(req)
		}
	}
}

// search runs one engine query. On timeout the search is stopped, the pool
// is immediately free for the next request, and the eventual late bestmove
// is remembered as stale so it cannot be attributed to a later search.
func (p *Pool) search(req request) result {
	skill, depth, movetime := difficultySettings(req.difficulty)
	cmds := []string{
		fmt.Sprintf("setoption name Skill Level value %d", skill),
		"ucinewgame",
		"position fen " + req.fen,
		fmt.Sprintf("go depth %d movetime %d", depth, movetime),
	}
	for _, cmd := range cmds {
		if err := p.tr.send(cmd); err != nil {
			p.log.Error("engine write failed", zap.Error(err))
			return result{}
		}
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	for {
		select {
		case line, open := <-p.tr.lines():
			if !open {
				p.log.Warn("engine stream closed mid-search")
				return result{}
			}
			if !strings.HasPrefix(line, "bestmove") {
				continue
			}
			if p.stale > 0 {
				p.stale--
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 2 || fields[1] == "(none)" {
				return result{}
			}
			return result{move: fields[1], ok: true}
		case <-timer.C:
			_ = p.tr.send("stop")
			p.stale++
			p.log.Warn("engine search timed out",
				zap.Duration("timeout", p.timeout),
				zap.Int("difficulty", req.difficulty))
			return result{}
		case <-p.done:
			return result{}
		}
	}
}

// difficultySettings maps a rating-like difficulty onto engine knobs. All
// three outputs grow monotonically with the input and stay inside the
// engine's accepted ranges.
func difficultySettings(difficulty int) (skill, depth, movetimeMs int) {
	if difficulty < 0 {
		difficulty = 0
	}
	skill = difficulty / 140
	if skill > 20 {
		skill = 20
	}
	depth = 1 + difficulty/200
	if depth > 15 {
		depth = 15
	}
	movetimeMs = 100 + difficulty/4
	if movetimeMs > 800 {
		movetimeMs = 800
	}
	return skill, depth, movetimeMs
}
