package core

import "fmt"

// DepKind classifies a data dependence.
type DepKind int

const (
	RAW DepKind = iota // read after write
	WAW                // write after write
	WAR                // write after read
)

func (k DepKind) String() string {
	switch k {
	case RAW:
		return "RAW"
	case WAW:
		return "WAW"
	case WAR:
		return "WAR"
	default:
		return fmt.Sprintf("DepKind(%d)", int(k))
	}
}

// Dependence links the earlier instruction that last accessed a register to
// the later instruction whose access depends on it.
type Dependence struct {
	Kind     DepKind
	Reg      int
	Producer int
	Consumer int
}

func (d Dependence) String() string {
	return fmt.Sprintf("%s $%d (%d, %d)", d.Kind, d.Reg, d.Producer, d.Consumer)
}
