package main

// Client -> Server message types
const (
	MsgCanJoin        = "can_join"
	MsgJoin           = "join"
	MsgMove           = "move"
	MsgCollectPoint   = "collect_point"
	MsgPauseGame      = "pause_game"
	MsgUnpauseGame    = "unpause_game"
	MsgStartByHost    = "start_game_by_host"
	MsgStopByHost     = "stop_game_by_host"
	MsgReadyToRestart = "ready_to_restart"
	MsgBinaryState    = "binary_state" // opt in to msgpack state frames
)

// Server -> Client message types
const (
	MsgCanJoinOK      = "can_join_ok"
	MsgMaxPlayers     = "max_players"
	MsgNameTaken      = "name_taken"
	MsgGameConfig     = "game_config"
	MsgObserverMode   = "observer_mode"
	MsgOfferStart     = "offer_start_game"
	MsgWaiting        = "waiting_for_players"
	MsgChooseDuration = "ready_to_choose_duration"
	MsgGameStarted    = "game_started"
	MsgState          = "state"
	MsgPointCollected = "point_collected"
	MsgGamePaused     = "game_paused"
	MsgGameUnpaused   = "game_unpaused"
	MsgHostChanged    = "host_changed"
	MsgGameOver       = "game_over"
)

// MsgPlayerQuit flows both ways: inbound as an explicit leave request,
// outbound as a "<name> left the game" toast for everyone else.
const MsgPlayerQuit = "player_quit"

// InMsg carries only the discriminator; the dispatcher decodes the
// concrete message in a second pass once the type is known.
type InMsg struct {
	Type string `json:"type"`
}

// JoinMsg is sent when a player wants to take a corner.
// Duration is only honored for the first player of a round.
type JoinMsg struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Duration int    `json:"duration"`
}

// MoveMsg is the client's movement intent, sent at a fixed client-side
// cadence. dx/dy need not be unit length; the server normalizes.
type MoveMsg struct {
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Angle     float64 `json:"angle"`
	MouthOpen bool    `json:"mouthOpen"`
}

// CollectPointMsg claims a coin by id.
type CollectPointMsg struct {
	PointID int `json:"pointId"`
}

// QuitMsg is the explicit leave request (the client reloads afterwards).
type QuitMsg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerState is the per-player slice of the broadcast snapshot.
type PlayerState struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Color     string  `json:"color"`
	Corner    int     `json:"corner"`
	Score     int     `json:"score"`
	MouthOpen bool    `json:"mouthOpen"`
}

// ItemState is the per-coin slice of the broadcast snapshot.
type ItemState struct {
	ID   int     `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type"`
}

// StateMsg is the full authoritative snapshot pushed after every
// mutating action. gameDuration/gameStartedAt are omitted until the
// host has started the match; the client keys its timer off them.
type StateMsg struct {
	Type          string        `json:"type"`
	Players       []PlayerState `json:"players"`
	Points        []ItemState   `json:"points"`
	GameDuration  *int          `json:"gameDuration,omitempty"`
	GameStartedAt *int64        `json:"gameStartedAt,omitempty"`
	GamePaused    bool          `json:"gamePaused"`
	PausedBy      string        `json:"pausedBy,omitempty"`
	PauseAccum    int64         `json:"pauseAccum"`
}

// CanJoinOKMsg answers the pre-join probe. Duration is present once the
// first player has fixed it, so late joiners see a read-only value.
type CanJoinOKMsg struct {
	Type     string `json:"type"`
	Duration *int   `json:"duration,omitempty"`
}

type MaxPlayersMsg struct {
	Type string `json:"type"`
}

type NameTakenMsg struct {
	Type string `json:"type"`
}

// GameConfigPayload mirrors the client-side tuning object key for key.
type GameConfigPayload struct {
	FieldWidth   float64 `json:"FIELD_WIDTH"`
	FieldHeight  float64 `json:"FIELD_HEIGHT"`
	PacmanRadius float64 `json:"PACMAN_RADIUS"`
	PointRadius  float64 `json:"POINT_RADIUS"`
	PointsTotal  int     `json:"POINTS_TOTAL"`
	PacmanSpeed  float64 `json:"PACMAN_SPEED"`
}

type GameConfigMsg struct {
	Type   string            `json:"type"`
	Config GameConfigPayload `json:"config"`
}

// ObserverModeMsg is the read-only snapshot for a connection that
// arrived after the match went live.
type ObserverModeMsg struct {
	Type       string        `json:"type"`
	Duration   int           `json:"duration"`
	StartTime  int64         `json:"startTime"`
	PauseAccum int64         `json:"pauseAccum"`
	Players    []PlayerState `json:"players"`
	Points     []ItemState   `json:"points"`
}

// OfferStartMsg prompts the host to start with the current headcount.
type OfferStartMsg struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type WaitingMsg struct {
	Type          string `json:"type"`
	IsFirstPlayer bool   `json:"isFirstPlayer"`
	Duration      *int   `json:"duration,omitempty"`
}

type ChooseDurationMsg struct {
	Type string `json:"type"`
}

type GameStartedMsg struct {
	Type          string `json:"type"`
	GameDuration  int    `json:"gameDuration"`
	GameStartedAt int64  `json:"gameStartedAt"`
}

// PointCollectedMsg is the private ack to the collector, used only for
// client-local feedback. Other clients learn via the state broadcast.
type PointCollectedMsg struct {
	Type      string `json:"type"`
	PointID   int    `json:"pointId"`
	PointType string `json:"pointType"`
}

type GamePausedMsg struct {
	Type          string `json:"type"`
	PausedBy      string `json:"pausedBy"`
	GameDuration  int    `json:"gameDuration"`
	GameStartedAt int64  `json:"gameStartedAt"`
	PauseAccum    int64  `json:"pauseAccum"`
}

type GameUnpausedMsg struct {
	Type          string `json:"type"`
	GameDuration  int    `json:"gameDuration"`
	GameStartedAt int64  `json:"gameStartedAt"`
	PauseAccum    int64  `json:"pauseAccum"`
}

type HostChangedMsg struct {
	Type   string `json:"type"`
	HostID string `json:"hostId"`
}

type PlayerQuitMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type GameOverMsg struct {
	Type    string        `json:"type"`
	Players []PlayerState `json:"players"`
}
