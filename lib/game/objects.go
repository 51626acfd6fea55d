package game

// --------------------------------------------------------------------------
// World
// --------------------------------------------------------------------------

// Ship is one object moving through a world.
type Ship struct {
	ID uint64  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// World is the physics state of one star system. All ships advance together
// when the world ticks.
type World struct {
	ID    uint64 `json:"id"`
	Tick  uint64 `json:"tick"`
	Ships []Ship `json:"ships"`
}

// Advance moves every ship along its velocity for dt ticks and bumps the
// world tick. The balance formulas behind acceleration and combat live with
// the game-math collaborators, only the integration step is needed here.
func (w *World) Advance(dt uint64) {
	for i := range w.Ships {
		w.Ships[i].X += w.Ships[i].VX * float64(dt)
		w.Ships[i].Y += w.Ships[i].VY * float64(dt)
	}
	w.Tick += dt
}

// --------------------------------------------------------------------------
// User
// --------------------------------------------------------------------------

// User is the per-user state: progression plus the set of completed
// research topics.
type User struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	Experience uint64          `json:"experience"`
	Level      int             `json:"level"`
	Research   map[string]bool `json:"research"`
}

// Experience thresholds double per level starting at 100.
const levelBaseExperience = 100

// LevelForExperience returns the level a user with the given experience
// holds. Level 1 starts at zero experience.
func LevelForExperience(xp uint64) int {
	level := 1
	threshold := uint64(levelBaseExperience)
	for xp >= threshold {
		level++
		threshold *= 2
	}
	return level
}

// Gain adds experience and recomputes the level. It reports whether the
// user leveled up, which callers use to invalidate the derived bonuses.
func (u *User) Gain(xp uint64) (leveledUp bool) {
	u.Experience += xp
	newLevel := LevelForExperience(u.Experience)
	leveledUp = newLevel != u.Level
	u.Level = newLevel
	return leveledUp
}

// CompleteResearch marks a research topic as done. It reports whether the
// topic was newly completed.
func (u *User) CompleteResearch(topic string) bool {
	if u.Research == nil {
		u.Research = make(map[string]bool)
	}
	if u.Research[topic] {
		return false
	}
	u.Research[topic] = true
	return true
}

// --------------------------------------------------------------------------
// Inventory
// --------------------------------------------------------------------------

// Item is one piece of equipment. The modifiers only count while the item
// is equipped.
type Item struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Equipped  bool    `json:"equipped"`
	AttackMod float64 `json:"attack_mod"`
	SpeedMod  float64 `json:"speed_mod"`
	XPMod     float64 `json:"xp_mod"`
}

// Inventory is the per-user item list, keyed by the owning user's id.
type Inventory struct {
	UserID uint64 `json:"user_id"`
	Items  []Item `json:"items"`
}

// Equip marks the item with the given id as equipped. It reports whether
// the item exists and changed state.
func (inv *Inventory) Equip(itemID uint64) bool {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			if inv.Items[i].Equipped {
				return false
			}
			inv.Items[i].Equipped = true
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Message
// --------------------------------------------------------------------------

// Message is one entry in the in-game message queue.
type Message struct {
	ID     uint64 `json:"id"`
	FromID uint64 `json:"from_id"`
	ToID   uint64 `json:"to_id"`
	Body   string `json:"body"`
	Read   bool   `json:"read"`
}

// --------------------------------------------------------------------------
// Bonuses
// --------------------------------------------------------------------------

// Bonuses is the derived aggregate of all multipliers that apply to a user:
// level progression, completed research and equipped items. It is memoized
// by the bonus cache and recomputed on demand after an invalidation.
type Bonuses struct {
	UserID     uint64  `json:"user_id"`
	XPRate     float64 `json:"xp_rate"`
	SpeedRate  float64 `json:"speed_rate"`
	AttackRate float64 `json:"attack_rate"`
}

// Per-research multiplier contributions.
var researchBonuses = map[string]Bonuses{
	"propulsion": {SpeedRate: 0.15},
	"weapons":    {AttackRate: 0.20},
	"academy":    {XPRate: 0.10},
}

// ComputeBonuses builds the bonus aggregate for a user from their level,
// research set and equipped items. A nil inventory counts as empty.
func ComputeBonuses(user *User, inv *Inventory) *Bonuses {
	b := &Bonuses{
		UserID:     user.ID,
		XPRate:     1.0 + 0.01*float64(user.Level-1),
		SpeedRate:  1.0,
		AttackRate: 1.0,
	}
	for topic, done := range user.Research {
		if !done {
			continue
		}
		if mod, ok := researchBonuses[topic]; ok {
			b.XPRate += mod.XPRate
			b.SpeedRate += mod.SpeedRate
			b.AttackRate += mod.AttackRate
		}
	}
	if inv != nil {
		for _, item := range inv.Items {
			if !item.Equipped {
				continue
			}
			b.XPRate += item.XPMod
			b.SpeedRate += item.SpeedMod
			b.AttackRate += item.AttackMod
		}
	}
	return b
}
