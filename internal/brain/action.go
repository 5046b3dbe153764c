package brain

// NumActions is the size of the discrete action space.
const NumActions = 9

// ActionID enumerates the parameter-nudge / entry-style decisions the policy
// can emit. Consumers map these onto concrete behavior; the brain itself only
// learns their long-run value per state.
type ActionID int

const (
	ActionHold ActionID = iota
	ActionEnterLong
	ActionEnterShort
	ActionWidenStop
	ActionTightenStop
	ActionExtendTarget
	ActionTrimTarget
	ActionScaleUp
	ActionScaleDown
)

var actionNames = [NumActions]string{
	"hold",
	"enter_long",
	"enter_short",
	"widen_stop",
	"tighten_stop",
	"extend_target",
	"trim_target",
	"scale_up",
	"scale_down",
}

func (a ActionID) String() string {
	if a < 0 || int(a) >= NumActions {
		return "invalid"
	}
	return actionNames[a]
}

// Valid reports whether the action is inside the action space.
func (a ActionID) Valid() bool {
	return a >= 0 && int(a) < NumActions
}
