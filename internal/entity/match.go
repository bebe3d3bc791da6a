package entity

import "time"

const (
	ModeComputerVsComputer = "computer-vs-computer"
	ModeHumanVsComputer    = "human-vs-computer"
)

const (
	KindRemote = "remote"
	KindLocal  = "local"
)

type MatchState string

const (
	StateIdle            MatchState = "idle"
	StateAwaitingOpening MatchState = "awaiting-opening"
	StateAwaitingReply   MatchState = "awaiting-response"
	StateTerminated      MatchState = "terminated"
)

const (
	ReasonForfeit           = "forfeit"
	ReasonInvalidCoordinate = "invalid-coordinate"
	ReasonOccupied          = "occupied"
	ReasonUnresponsive      = "unresponsive"
	ReasonCancelled         = "cancelled"
)

// Seat is one of the two match participants, bound to its color for the whole match.
type Seat struct {
	Color    Color  `json:"color"`
	Name     string `json:"name,omitempty"`
	Kind     string `json:"kind"`
	Session  string `json:"session"`
	Endpoint string `json:"endpoint,omitempty"`
}

func (that *Seat) IsLocal() bool {
	return that.Kind == KindLocal
}

type Stone struct {
	Coordinate
	Color Color `json:"color"`
	Step  int   `json:"step"`
}

type Result struct {
	Forfeit  Color  `json:"forfeit"`
	Survivor Color  `json:"survivor"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail,omitempty"`
}

type Match struct {
	ID        string     `json:"id"`
	Mode      string     `json:"mode"`
	State     MatchState `json:"state"`
	Turn      Color      `json:"turn,omitempty"`
	Black     *Seat      `json:"black"`
	White     *Seat      `json:"white"`
	Stones    []Stone    `json:"stones"`
	Step      int        `json:"step"`
	Result    *Result    `json:"result,omitempty"`
	StartedAt time.Time  `json:"started_at"`
}

func NewMatch(id, mode string, black, white *Seat) *Match {
	return &Match{
		ID:     id,
		Mode:   mode,
		State:  StateIdle,
		Black:  black,
		White:  white,
		Stones: []Stone{},
	}
}

func (that *Match) Seat(color Color) *Seat {
	if color == Black {
		return that.Black
	}
	return that.White
}

func (that *Match) IsTerminated() bool {
	return that.State == StateTerminated
}

// Terminate - ends the match with the given seat forfeiting; further calls keep the first result.
func (that *Match) Terminate(forfeit Color, reason, detail string) {
	if that.IsTerminated() {
		return
	}

	that.State = StateTerminated
	that.Turn = ""
	that.Result = &Result{
		Forfeit:  forfeit,
		Survivor: forfeit.Opposite(),
		Reason:   reason,
		Detail:   detail,
	}
}

// Record - appends an applied stone to the snapshot.
func (that *Match) Record(stone Stone) {
	that.Stones = append(that.Stones, stone)
	that.Step = stone.Step
}
