package simulation

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
	gametetris "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

// ErrInvalidSimulation はシミュレーションの設定が不正な場合に返されます。
var ErrInvalidSimulation = errors.New("invalid simulation config")

// randomActions はランダムプレイで選ばれる操作です。
var randomActions = []gametetris.Action{
	gametetris.ActionRotate,
	gametetris.ActionMoveLeft,
	gametetris.ActionMoveRight,
	gametetris.ActionSoftDrop,
	gametetris.ActionHardDrop,
}

// Config はシミュレーションの設定
type Config struct {
	Frames        int           // 進めるフレーム数
	FrameInterval time.Duration // 1フレームで進める時間
	InputRate     float64       // 1フレームごとに操作を入力する確率 (0〜1)
	PrintEvery    int           // Verbose時にこのフレームごとにボードを表示する（0なら最後のみ）
	Verbose       bool
	Game          config.Game
}

// DefaultConfig はデフォルトの設定を返す
func DefaultConfig() Config {
	return Config{
		Frames:        3600,
		FrameInterval: 16 * time.Millisecond,
		InputRate:     0.2,
		PrintEvery:    0,
		Verbose:       false,
		Game:          config.DefaultGame(),
	}
}

// Validate は設定値を確認する
func (c Config) Validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalidSimulation, c.Frames)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive, got %v", ErrInvalidSimulation, c.FrameInterval)
	}
	if c.InputRate < 0 || c.InputRate > 1 {
		return fmt.Errorf("%w: input rate must be within [0, 1], got %v", ErrInvalidSimulation, c.InputRate)
	}
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSimulation, err)
	}
	return nil
}

// Result はシミュレーションの結果
type Result struct {
	Score         int // 最後のゲームのスコア
	BestScore     int // 全ゲーム中の最高スコア
	LinesCleared  int // 全ゲームの合計ライン数
	PiecesSpawned int // 全ゲームで出現したピースの合計
	GamesPlayed   int
	Frames        int // 実際に進めたフレーム数
}

// tracker はゲームがリセットされても合計値を失わないように、フレームごとに状態を記録する
type tracker struct {
	result    Result
	games     int
	lastScore int
	lastLines int
	lastSpawn int
}

func (t *tracker) observe(snap gametetris.Snapshot) {
	if t.games != 0 && snap.GamesPlayed != t.games {
		t.commit()
	}
	t.games = snap.GamesPlayed
	t.lastScore = snap.Score
	t.lastLines = snap.LinesCleared
	t.lastSpawn = 0
	for _, n := range snap.SpawnCounts {
		t.lastSpawn += n
	}
}

// commit は記録中のゲームの値を合計に加える
func (t *tracker) commit() {
	t.result.LinesCleared += t.lastLines
	t.result.PiecesSpawned += t.lastSpawn
	if t.lastScore > t.result.BestScore {
		t.result.BestScore = t.lastScore
	}
}

func (t *tracker) finish(frames int) Result {
	t.commit()
	t.result.Score = t.lastScore
	t.result.GamesPlayed = t.games
	t.result.Frames = frames
	return t.result
}

// Run はランダムな入力でゲームを自動プレイし、結果を返す。
// AutoReset が無効な場合はゲームオーバーになった時点で終了する。
func Run(w io.Writer, rng *rand.Rand, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	state, err := gametetris.NewGameState(cfg.Game, rng)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start simulation: %w", err)
	}

	if cfg.Verbose {
		fmt.Fprintln(w, "=== Tetris Simulation ===")
		fmt.Fprintf(w, "Frames: %d, Frame: %v, Input rate: %.2f\n\n", cfg.Frames, cfg.FrameInterval, cfg.InputRate)
	}

	var t tracker
	t.observe(state.Snapshot())

	frames := 0
	for frames < cfg.Frames && state.Status == gametetris.StatusPlaying {
		if rng.Float64() < cfg.InputRate {
			state.HandleInput(randomActions[rng.Intn(len(randomActions))])
		}
		state.AdvanceTime(cfg.FrameInterval)
		frames++

		snap := state.Snapshot()
		t.observe(snap)

		if cfg.Verbose && cfg.PrintEvery > 0 && frames%cfg.PrintEvery == 0 {
			printFrame(w, frames, snap)
		}
	}

	result := t.finish(frames)

	// 最終結果は常に表示
	printFrame(w, frames, state.Snapshot())
	printResult(w, result)
	return result, nil
}

// RunSession は SessionManager 上の1セッションとして自動プレイする。
// フレームは実時間で進むため、cfg.Frames 個のスナップショットを受け取るまでブロックする。
func RunSession(w io.Writer, rng *rand.Rand, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	sm := gametetris.NewSessionManager(cfg.FrameInterval)
	defer sm.Shutdown()

	id, err := sm.CreateSession(cfg.Game, rng.Int63())
	if err != nil {
		return Result{}, fmt.Errorf("failed to start simulation session: %w", err)
	}
	snapshots, err := sm.Subscribe(id)
	if err != nil {
		return Result{}, fmt.Errorf("failed to subscribe to session %s: %w", id, err)
	}

	var t tracker
	frames := 0
	var last gametetris.Snapshot
	for snap := range snapshots {
		last = snap
		t.observe(snap)
		if frames >= cfg.Frames || snap.Status != gametetris.StatusPlaying {
			break
		}
		frames++

		if rng.Float64() < cfg.InputRate {
			// キューが溢れた入力は捨ててよい
			err := sm.SubmitInput(id, randomActions[rng.Intn(len(randomActions))])
			if err != nil && !errors.Is(err, gametetris.ErrInputQueueFull) {
				return Result{}, err
			}
		}
		if cfg.Verbose && cfg.PrintEvery > 0 && frames%cfg.PrintEvery == 0 {
			printFrame(w, frames, snap)
		}
	}
	sm.EndSession(id)

	result := t.finish(frames)
	printFrame(w, frames, last)
	printResult(w, result)
	return result, nil
}

// Render は固定済みのブロックに現在のピースを重ねたボードを返す
func Render(snap gametetris.Snapshot) tetris.Board {
	board := snap.Board
	if snap.CurrentPiece != nil {
		if t, ok := tetris.StringToPieceType(snap.CurrentPiece.Type); ok {
			board.SetCells(snap.CurrentPiece.Cells, t.BlockType())
		}
	}
	return board
}

func printFrame(w io.Writer, frame int, snap gametetris.Snapshot) {
	board := Render(snap)
	fmt.Fprint(w, board.String())
	fmt.Fprintf(w, "Frame: %d, Score: %d, Lines: %d, Level: %d, Game: %d\n\n",
		frame, snap.Score, snap.LinesCleared, snap.Level, snap.GamesPlayed)
}

func printResult(w io.Writer, result Result) {
	fmt.Fprintln(w, "=== Simulation Finished ===")
	fmt.Fprintf(w, "Final Score: %d\n", result.Score)
	fmt.Fprintf(w, "Best Score: %d\n", result.BestScore)
	fmt.Fprintf(w, "Total Lines: %d\n", result.LinesCleared)
	fmt.Fprintf(w, "Pieces Spawned: %d\n", result.PiecesSpawned)
	fmt.Fprintf(w, "Games Played: %d\n", result.GamesPlayed)
	fmt.Fprintf(w, "Frames: %d\n", result.Frames)
}
