package frame

// Unit is anything that can be placed on the wire: a *Frame or a
// HeartBeat. Empty distinguishes keep-alives from content without type
// switching.
type Unit interface {
	Render() ([]byte, error)
	Info() string
	Empty() bool
}

var (
	_ Unit = (*Frame)(nil)
	_ Unit = HeartBeat{}
)

// HeartBeat is the empty keep-alive signal. It carries no state; all
// HeartBeat values compare equal to each other and never to a Frame.
type HeartBeat struct{}

// Render emits the wire form of a heart-beat: a single line delimiter.
func (HeartBeat) Render() ([]byte, error) {
	return []byte{LineDelimiter}, nil
}

func (HeartBeat) Info() string { return "heart-beat" }

// Empty is always true; a heart-beat carries no content.
func (HeartBeat) Empty() bool { return true }
