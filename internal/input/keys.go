package input

// Key codes follow the browser keyCode table so remote clients can forward
// their key events unchanged.
const (
	KeyLeft  = 37
	KeyUp    = 38
	KeyRight = 39
	KeyDown  = 40

	KeyA = 65
	KeyB = 66
	KeyD = 68
	KeyP = 80
	KeyQ = 81
	KeyR = 82
	KeyS = 83
	KeyW = 87
)

// Control is a logical player control.
type Control uint8

const (
	ControlUp Control = iota
	ControlDown
	ControlLeft
	ControlRight
	controlCount
)

var controlNames = [controlCount]string{"up", "down", "left", "right"}

func (c Control) String() string {
	if c < controlCount {
		return controlNames[c]
	}
	return "unknown"
}

// keyControls maps keys to the control they drive.
var keyControls = map[int]Control{
	KeyUp:    ControlUp,
	KeyDown:  ControlDown,
	KeyLeft:  ControlLeft,
	KeyRight: ControlRight,
}
