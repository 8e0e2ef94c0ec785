package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	gridSize     = 4
	tileSize     = 115
	tileGap      = 10
	boardSpan    = gridSize*tileSize + (gridSize+1)*tileGap
	headerHeight = 120
	footerHeight = 100
	screenWidth  = boardSpan
	screenHeight = headerHeight + boardSpan + footerHeight

	boardPollInterval  = 250 * time.Millisecond // Events carry no grids, so the board is always polled
	statusPollInterval = time.Second
	animationDuration  = 150 * time.Millisecond // Tile pop duration
	shakeDuration      = 400 * time.Millisecond // Recovery shake duration
	moveFlashDuration  = 300 * time.Millisecond
)

// serverAddr is the bot server to watch. Overridable via the first CLI argument.
var serverAddr = "localhost:8080"

// Strategy mirrors the planner configuration reported by the server.
type Strategy struct {
	Kind        string  `json:"kind"`
	Heuristic   string  `json:"heuristic"`
	Depth       int     `json:"depth"`
	Probability float64 `json:"probability"`
}

// EngineStatus mirrors the engine portion of /api/status.
type EngineStatus struct {
	Mode     string   `json:"mode"`
	Status   string   `json:"status"`
	Strategy Strategy `json:"strategy"`
}

// DriverStats mirrors the loop counters from /api/status.
type DriverStats struct {
	State        string `json:"state"`
	RunID        string `json:"run_id,omitempty"`
	Moves        int    `json:"moves"`
	Ticks        int    `json:"ticks"`
	Stuck        int    `json:"stuck"`
	Recoveries   int    `json:"recoveries"`
	ReadFailures int    `json:"read_failures"`
}

// BotStatus mirrors /api/status.
type BotStatus struct {
	Engine  EngineStatus `json:"engine"`
	Driver  DriverStats  `json:"driver"`
	Profile string       `json:"profile,omitempty"`
}

// BoardState mirrors /api/board. Cells hold tile values, not exponents.
type BoardState struct {
	Cells    [][]int  `json:"cells"`
	Score    int      `json:"score"`
	MaxTile  int      `json:"max_tile"`
	GameOver bool     `json:"game_over"`
	Ranked   []string `json:"ranked,omitempty"`
}

// DriverEvent mirrors the loop events broadcast over /ws.
type DriverEvent struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
	Attempt   int    `json:"attempt,omitempty"`
	Message   string `json:"message,omitempty"`
}

// wsEnvelope is the hub's message wrapper.
type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Game is the desktop viewer. It renders the autopilot's board and maps the
// keyboard onto the loop control endpoints.
type Game struct {
	stateMutex sync.RWMutex

	board    *BoardState
	status   *BotStatus
	boardErr string

	wsConn *websocket.Conn

	lastBoardFetch  time.Time
	lastStatusFetch time.Time

	popStarted  map[int]time.Time // tile index -> pop start, for spawn/merge pops
	lastMoveDir string
	lastMoveAt  time.Time
	shakeTime   time.Time // When a stuck board was detected
	isShaking   bool
}

// NewGame creates the viewer and connects it to the bot server.
func NewGame() *Game {
	g := &Game{
		popStarted: make(map[int]time.Time),
	}

	if err := g.connectWebSocket(); err != nil {
		log.Printf("WebSocket connect failed: %v (falling back to polling)", err)
	} else {
		go g.listenWebSocket()
	}

	// Initial state fetch
	if err := g.fetchStatus(); err != nil {
		log.Printf("Initial status fetch failed: %v", err)
	}
	if err := g.fetchBoard(); err != nil {
		log.Printf("Initial board fetch failed: %v", err)
	}

	return g
}

// connectWebSocket establishes the event stream connection.
func (g *Game) connectWebSocket() error {
	wsURL := url.URL{Scheme: "ws", Host: serverAddr, Path: "/ws"}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	g.wsConn = conn
	log.Printf("WebSocket connected to %s", serverAddr)
	return nil
}

// listenWebSocket consumes the event stream until the connection drops.
func (g *Game) listenWebSocket() {
	conn := g.wsConn
	if conn == nil {
		return
	}
	defer conn.Close()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v (falling back to polling)", err)
			g.stateMutex.Lock()
			g.wsConn = nil
			g.stateMutex.Unlock()
			return
		}

		// The hub batches queued messages into one frame separated by newlines.
		for _, raw := range bytes.Split(frame, []byte{'\n'}) {
			if len(raw) == 0 {
				continue
			}

			var env wsEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				log.Printf("WebSocket JSON parse error: %v", err)
				continue
			}

			g.handleEvent(env)
		}
	}
}

// handleEvent updates viewer state from one hub message.
func (g *Game) handleEvent(env wsEnvelope) {
	switch env.Event {
	case "status":
		var status BotStatus
		if err := json.Unmarshal(env.Data, &status); err != nil {
			log.Printf("Bad status event: %v", err)
			return
		}
		g.stateMutex.Lock()
		g.status = &status
		g.stateMutex.Unlock()

	case "move":
		var ev DriverEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		g.stateMutex.Lock()
		g.lastMoveDir = ev.Direction
		g.lastMoveAt = time.Now()
		g.stateMutex.Unlock()

	case "stuck", "recovery":
		// The board refused to change - shake it.
		g.stateMutex.Lock()
		g.shakeTime = time.Now()
		g.isShaking = true
		g.stateMutex.Unlock()

	case "game_over":
		var ev DriverEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		log.Printf("Game over: %s", ev.Message)
	}
}

// fetchBoard gets the current board from the server.
func (g *Game) fetchBoard() error {
	resp, err := http.Get(fmt.Sprintf("http://%s/api/board", serverAddr))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var state BoardState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse board JSON: %v (body: %s)", err, string(body))
	}

	g.storeBoard(&state)
	return nil
}

// storeBoard swaps in a fresh board and starts pops for cells that changed.
func (g *Game) storeBoard(state *BoardState) {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if g.board != nil {
		for y, row := range state.Cells {
			if y >= len(g.board.Cells) {
				break
			}
			for x, value := range row {
				if x >= len(g.board.Cells[y]) {
					break
				}
				if value != 0 && value != g.board.Cells[y][x] {
					g.popStarted[y*gridSize+x] = time.Now()
				}
			}
		}
	}

	g.board = state
	g.boardErr = ""
}

// fetchStatus gets the engine and loop state from the server.
func (g *Game) fetchStatus() error {
	resp, err := http.Get(fmt.Sprintf("http://%s/api/status", serverAddr))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var status BotStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("failed to parse status JSON: %v (body: %s)", err, string(body))
	}

	g.stateMutex.Lock()
	g.status = &status
	g.stateMutex.Unlock()

	return nil
}

// sendControl posts to a loop control endpoint and refreshes the status.
func (g *Game) sendControl(action string) error {
	url := fmt.Sprintf("http://%s/api/driver/%s", serverAddr, action)

	resp, err := http.Post(url, "application/json", strings.NewReader("{}"))
	if err != nil {
		log.Printf("Control %s failed: %v", action, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("Control %s rejected: %s", action, strings.TrimSpace(string(body)))
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return g.fetchStatus()
}

// Update advances animations, polls the server, and handles input.
func (g *Game) Update() error {
	g.advanceAnimations()

	if time.Since(g.lastBoardFetch) > boardPollInterval {
		g.lastBoardFetch = time.Now()
		if err := g.fetchBoard(); err != nil {
			g.stateMutex.Lock()
			g.boardErr = err.Error()
			g.stateMutex.Unlock()
		}
	}

	if time.Since(g.lastStatusFetch) > statusPollInterval {
		g.lastStatusFetch = time.Now()
		if err := g.fetchStatus(); err != nil {
			log.Printf("Error fetching status: %v", err)
		}
	}

	g.handleInput()
	return nil
}

// advanceAnimations expires finished tile pops and the recovery shake.
func (g *Game) advanceAnimations() {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	for idx, started := range g.popStarted {
		if time.Since(started) > animationDuration {
			delete(g.popStarted, idx)
		}
	}

	if g.isShaking && time.Since(g.shakeTime) > shakeDuration {
		g.isShaking = false
	}
}

// handleInput maps keys onto the control endpoints.
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.driverState() == "running" {
			g.sendControl("stop")
		} else {
			g.sendControl("start")
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		switch g.driverState() {
		case "running":
			g.sendControl("pause")
		case "paused":
			g.sendControl("resume")
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.sendControl("step")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendControl("reset")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.fetchBoard()
		g.fetchStatus()
	}
}

// driverState returns the last known loop state.
func (g *Game) driverState() string {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if g.status == nil {
		return ""
	}
	return g.status.Driver.State
}

// Draw renders the viewer.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	g.drawHeader(screen)
	g.drawBoard(screen)
	g.drawFooter(screen)
}

// drawHeader renders the engine and loop summary. Caller holds stateMutex.
func (g *Game) drawHeader(screen *ebiten.Image) {
	y := 10
	ebitenutil.DebugPrintAt(screen, "=== 2048 AUTOPILOT ===", screenWidth/2-66, y)
	y += 20

	conn := "POLL"
	if g.wsConn != nil {
		conn = "WS"
	}

	if g.status != nil {
		s := g.status
		engineLine := fmt.Sprintf("Engine: %s (%s) | %s/%s depth=%d [%s]",
			s.Engine.Mode, s.Engine.Status,
			s.Engine.Strategy.Kind, s.Engine.Strategy.Heuristic, s.Engine.Strategy.Depth,
			conn)
		ebitenutil.DebugPrintAt(screen, engineLine, 10, y)
		y += 15

		d := s.Driver
		driverLine := fmt.Sprintf("Driver: %s | Moves:%d Ticks:%d Stuck:%d Rec:%d",
			d.State, d.Moves, d.Ticks, d.Stuck, d.Recoveries)
		if d.RunID != "" {
			driverLine += " | " + d.RunID
		}
		ebitenutil.DebugPrintAt(screen, driverLine, 10, y)
		y += 15

		if s.Profile != "" {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Profile: %s", s.Profile), 10, y)
			y += 15
		}
	} else {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Connecting to %s... [%s]", serverAddr, conn), 10, y)
		y += 15
	}

	if g.board != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d | Max tile: %d", g.board.Score, g.board.MaxTile), 10, y)
		y += 15

		if len(g.board.Ranked) > 0 {
			ebitenutil.DebugPrintAt(screen, "Planner: "+strings.Join(g.board.Ranked, " > "), 10, y)
			y += 15
		}
	}

	if g.lastMoveDir != "" {
		marker := fmt.Sprintf("Last move: %s", g.lastMoveDir)
		if time.Since(g.lastMoveAt) < moveFlashDuration {
			marker += " <<<"
		}
		ebitenutil.DebugPrintAt(screen, marker, 10, y)
	}
}

// drawBoard renders the grid with tile pops and the recovery shake.
// Caller holds stateMutex.
func (g *Game) drawBoard(screen *ebiten.Image) {
	// Shake effect (dampening over time)
	var shakeX, shakeY float64
	if g.isShaking {
		progress := time.Since(g.shakeTime).Seconds() / shakeDuration.Seconds()
		intensity := 6.0 * (1.0 - progress)
		shakeX = intensity * math.Sin(progress*40)
		shakeY = intensity * math.Cos(progress*40)
	}

	ebitenutil.DrawRect(screen, shakeX, float64(headerHeight)+shakeY,
		boardSpan, boardSpan, color.RGBA{187, 173, 160, 255})

	if g.board == nil {
		ebitenutil.DebugPrintAt(screen, "Waiting for board...", screenWidth/2-60, headerHeight+boardSpan/2)
		return
	}

	for rowIdx, row := range g.board.Cells {
		for colIdx, value := range row {
			tileX := float64(colIdx*(tileSize+tileGap)+tileGap) + shakeX
			tileY := float64(headerHeight+rowIdx*(tileSize+tileGap)+tileGap) + shakeY

			// Pop freshly spawned or merged tiles
			size := float64(tileSize)
			if started, ok := g.popStarted[rowIdx*gridSize+colIdx]; ok {
				progress := time.Since(started).Seconds() / animationDuration.Seconds()
				if progress > 1.0 {
					progress = 1.0
				}
				size = float64(tileSize) * (0.6 + 0.4*progress)
			}
			inset := (float64(tileSize) - size) / 2

			ebitenutil.DrawRect(screen, tileX+inset, tileY+inset, size, size, tileColor(value))

			if value > 0 {
				label := fmt.Sprintf("%d", value)
				ebitenutil.DebugPrintAt(screen, label,
					int(tileX)+tileSize/2-3*len(label),
					int(tileY)+tileSize/2-8)
			}
		}
	}

	if g.board.GameOver {
		ebitenutil.DebugPrintAt(screen, "=== GAME OVER - press R for a fresh board ===",
			screenWidth/2-135, headerHeight+boardSpan/2)
	}
}

// drawFooter renders the key bindings. Caller holds stateMutex.
func (g *Game) drawFooter(screen *ebiten.Image) {
	y := headerHeight + boardSpan + 15
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 10, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  SPACE - Start/Stop | P - Pause/Resume | T - Single step", 10, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  R - Reset board | F5 - Refresh now", 10, y)
	y += 15

	if g.boardErr != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", g.boardErr), 10, y)
	}
}

// Layout returns the game screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// tileColor returns the classic palette color for a tile value.
func tileColor(value int) color.Color {
	switch value {
	case 0:
		return color.RGBA{205, 193, 180, 255}
	case 2:
		return color.RGBA{238, 228, 218, 255}
	case 4:
		return color.RGBA{237, 224, 200, 255}
	case 8:
		return color.RGBA{242, 177, 121, 255}
	case 16:
		return color.RGBA{245, 149, 99, 255}
	case 32:
		return color.RGBA{246, 124, 95, 255}
	case 64:
		return color.RGBA{246, 94, 59, 255}
	case 128:
		return color.RGBA{237, 207, 114, 255}
	case 256:
		return color.RGBA{237, 204, 97, 255}
	case 512:
		return color.RGBA{237, 200, 80, 255}
	case 1024:
		return color.RGBA{237, 197, 63, 255}
	case 2048:
		return color.RGBA{237, 194, 46, 255}
	default:
		return color.RGBA{60, 58, 50, 255} // Beyond 2048
	}
}

func main() {
	if len(os.Args) > 1 {
		serverAddr = os.Args[1]
	}

	game := NewGame()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("2048 Autopilot - Desktop Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
