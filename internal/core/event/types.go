package event

// Gameplay events emitted by the step systems. IDs are raw entity IDs so
// this package stays a leaf.

type RunStarted struct {
	Mode   string
	MapKey string
	Seed   uint64
}

type RunEnded struct {
	Wave      int
	Kills     int
	Coins     int
	ElapsedMs float64
	Died      bool
}

type WaveStarted struct {
	Wave     int
	Count    int
	Elites   int
	HPMul    float64
	SpeedMul float64
}

type ZombieKilled struct {
	ZombieID uint64
	Tag      string
	Elite    bool
	Boss     bool
	X, Y     float64
}

type PickupCollected struct {
	Kind   string
	Amount int
}

type RelicCollected struct {
	Relics int
	Needed int
}

type WonderUnlocked struct {
	Weapon string
	AtMs   float64
}

// Purchase records a successful shop transaction.
type Purchase struct {
	Item  string // "upgrade", "reroll", "reload", "plate", "perk:<id>"
	Cost  int
	Coins int // balance after the purchase
	Wave  int
	AtMs  float64
}

type PlayerDamaged struct {
	Damage   float64
	Absorbed float64
	HP       float64
}

type PlayerDied struct {
	Wave int
	X, Y float64
	AtMs float64
}

// HookFailed reports a collaborator hook that returned an error or panicked.
type HookFailed struct {
	Hook  string
	Error string
}
