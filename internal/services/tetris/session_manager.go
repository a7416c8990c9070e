package tetris

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInputQueueFull  = errors.New("input queue is full")
	ErrManagerClosed   = errors.New("session manager is shut down")
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	inputQueueSize       = 512 // プレイヤー操作のキューイング用
	subscriberBufferSize = 16
)

// Subscriber はゲーム状態のスナップショットを受け取る描画側のアダプタを表します。
type Subscriber struct {
	SessionID string
	Send      chan Snapshot // 描画側へスナップショットを送るためのバッファ付きチャネル
	closed    bool
	mu        sync.Mutex // closedフラグ保護用
}

// SafeSend は安全にチャネルにスナップショットを送信します。
// 受信側が追いついていない場合は、そのスナップショットを捨ててfalseを返します。
func (c *Subscriber) SafeSend(snapshot Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- snapshot:
		return true
	default:
		return false
	}
}

// SafeClose は安全にチャネルを閉じます
func (c *Subscriber) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// GameSession はSessionManagerが管理する1つのゲームです。
type GameSession struct {
	ID          string
	State       *GameState
	StartedAt   time.Time
	lastFrame   time.Time
	subscribers []*Subscriber
}

// PlayerInputEvent は入力側のアダプタから届いた操作です。
type PlayerInputEvent struct {
	SessionID string `json:"session_id"`
	Action    Action `json:"action"`
}

// SessionManager は複数のゲームをプロセス内で動かします。
//
// 時間の進行と入力の適用はすべて Run のゴルーチンで行い、
// セッションとゲーム状態へのアクセスは1つの RWMutex で保護します。
type SessionManager struct {
	sessions      map[string]*GameSession
	inputEvents   chan PlayerInputEvent
	quit          chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
	mu            sync.RWMutex
	frameInterval time.Duration
	now           func() time.Time
}

// NewSessionManager は新しい SessionManager を作成し、メインループをバックグラウンドで開始します。
func NewSessionManager(frameInterval time.Duration) *SessionManager {
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	sm := &SessionManager{
		sessions:      make(map[string]*GameSession),
		inputEvents:   make(chan PlayerInputEvent, inputQueueSize),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		frameInterval: frameInterval,
		now:           time.Now,
	}
	go sm.Run()
	return sm
}

// Run は SessionManager のメインループです。
// フレームごとの時間の進行とプレイヤー入力の適用を1つのゴルーチンで順番に処理します。
func (sm *SessionManager) Run() {
	defer close(sm.done)

	ticker := time.NewTicker(sm.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-sm.inputEvents:
			sm.mu.Lock()
			session, ok := sm.sessions[event.SessionID]
			if !ok {
				sm.mu.Unlock()
				log.Printf("[SessionManager] Received input for non-existent session %s", event.SessionID)
				continue
			}
			changed := session.State.HandleInput(event.Action)
			var snapshot Snapshot
			subscribers := append([]*Subscriber(nil), session.subscribers...)
			if changed {
				snapshot = session.State.Snapshot()
			}
			sm.mu.Unlock()

			if changed {
				publish(subscribers, snapshot)
			}

		case <-ticker.C:
			sm.advanceAll(sm.now())

		case <-sm.quit:
			log.Printf("[SessionManager] Shutdown signal received, stopping main loop")
			return
		}
	}
}

type pendingSnapshot struct {
	subscribers []*Subscriber
	snapshot    Snapshot
}

// advanceAll は全セッションの時間を前回のフレームからの経過分だけ進めます。
func (sm *SessionManager) advanceAll(now time.Time) {
	var pending []pendingSnapshot

	sm.mu.Lock()
	for _, session := range sm.sessions {
		elapsed := now.Sub(session.lastFrame)
		session.lastFrame = now
		session.State.AdvanceTime(elapsed)

		if len(session.subscribers) > 0 {
			pending = append(pending, pendingSnapshot{
				subscribers: append([]*Subscriber(nil), session.subscribers...),
				snapshot:    session.State.Snapshot(),
			})
		}
	}
	sm.mu.Unlock()

	// ロック外で送信する
	for _, p := range pending {
		publish(p.subscribers, p.snapshot)
	}
}

func publish(subscribers []*Subscriber, snapshot Snapshot) {
	for _, sub := range subscribers {
		sub.SafeSend(snapshot)
	}
}

// CreateSession は新しいゲームを作成し、そのIDを返します。
//
// Parameters:
//
//	cfg  : ルール設定
//	seed : 乱数のシード。0の場合は現在時刻を使います
func (sm *SessionManager) CreateSession(cfg config.Game, seed int64) (string, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	state, err := NewGameState(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return "", fmt.Errorf("failed to create game session: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	select {
	case <-sm.quit:
		return "", ErrManagerClosed
	default:
	}

	now := sm.now()
	sm.sessions[state.ID] = &GameSession{
		ID:        state.ID,
		State:     state,
		StartedAt: now,
		lastFrame: now,
	}
	log.Printf("[SessionManager] Created new game session: %s (seed %d)", state.ID, seed)
	return state.ID, nil
}

// SubmitInput はプレイヤーの操作をメインループのキューに入れます。
// 操作は次のループで適用されます。
func (sm *SessionManager) SubmitInput(sessionID string, action Action) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}

	select {
	case <-sm.quit:
		return ErrManagerClosed
	default:
	}

	sm.mu.RLock()
	_, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	select {
	case sm.inputEvents <- PlayerInputEvent{SessionID: sessionID, Action: action}:
		return nil
	default:
		log.Printf("[SessionManager] Input events channel is full, dropping input for session %s", sessionID)
		return ErrInputQueueFull
	}
}

// Subscribe は指定されたセッションのスナップショットを受け取るチャネルを返します。
// 登録直後に現在の状態が1つ送られます。チャネルはセッション終了時に閉じられます。
func (sm *SessionManager) Subscribe(sessionID string) (<-chan Snapshot, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sub := &Subscriber{
		SessionID: sessionID,
		Send:      make(chan Snapshot, subscriberBufferSize),
	}
	session.subscribers = append(session.subscribers, sub)
	sub.SafeSend(session.State.Snapshot())
	return sub.Send, nil
}

// GetSnapshot は指定されたセッションの現在の状態を返します。
func (sm *SessionManager) GetSnapshot(sessionID string) (Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	return session.State.Snapshot(), true
}

// ResetSession は指定されたセッションで新しいゲームを始めます。
// AutoReset が無効な設定でゲームオーバーになった後に使います。
func (sm *SessionManager) ResetSession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	session.State.Reset()
	session.lastFrame = sm.now()
	log.Printf("[SessionManager] Session %s reset (game #%d)", sessionID, session.State.GamesPlayed)
	return nil
}

// EndSession はセッションを終了し、購読者のチャネルを閉じます。
func (sm *SessionManager) EndSession(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		log.Printf("[SessionManager] EndSession called for non-existent session: %s", sessionID)
		return
	}
	for _, sub := range session.subscribers {
		sub.SafeClose()
	}
	delete(sm.sessions, sessionID)
	log.Printf("[SessionManager] Game session %s ended. Final Score: %d", sessionID, session.State.Score)
}

// Shutdown は SessionManager を安全にシャットダウンします。
// メインループの終了を待ち、全ての購読者のチャネルを閉じます。
func (sm *SessionManager) Shutdown() {
	sm.closeOnce.Do(func() {
		log.Printf("[SessionManager] Shutting down...")
		close(sm.quit)
		<-sm.done

		sm.mu.Lock()
		for _, session := range sm.sessions {
			for _, sub := range session.subscribers {
				sub.SafeClose()
			}
		}
		sm.sessions = make(map[string]*GameSession)
		sm.mu.Unlock()

		log.Printf("[SessionManager] Shutdown complete")
	})
}
