package vectortile

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

const cmdBits = 3

//CommandID is the operation packed in the low bits of a command integer.
type CommandID uint8

const (
	MoveTo    CommandID = 1
	LineTo    CommandID = 2
	ClosePath CommandID = 7
)

func (id CommandID) String() string {
	switch id {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case ClosePath:
		return "ClosePath"
	}
	return "Command(" + strconv.Itoa(int(id)) + ")"
}

//Delta is one cursor-relative parameter pair.
type Delta struct {
	DX int32
	DY int32
}

//Command is one decoded record of a geometry stream. For MoveTo and LineTo
//Count equals len(Params); ClosePath carries no parameters.
type Command struct {
	ID     CommandID
	Count  uint32
	Params []Delta
}

// EncodeZigZag maps a signed delta onto the unsigned parameter space.
func EncodeZigZag(n int32) uint32 {
	return uint32(protowire.EncodeZigZag(int64(n)))
}

// DecodeZigZag inverts EncodeZigZag.
func DecodeZigZag(z uint32) int32 {
	return int32(protowire.DecodeZigZag(uint64(z)))
}

// DecodeCommands splits a geometry stream into command records. It rejects
// unknown command ids and streams whose last record is cut short, which is
// also the only way integers can trail the final whole record.
func DecodeCommands(stream []uint32) ([]Command, error) {
	var cmds []Command
	for i := 0; i < len(stream); {
		ci := stream[i]
		id := CommandID(ci & (1<<cmdBits - 1))
		count := ci >> cmdBits
		i++
		switch id {
		case ClosePath:
			cmds = append(cmds, Command{ID: id, Count: count})
		case MoveTo, LineTo:
			need := 2 * int(count)
			if left := len(stream) - i; need > left {
				return nil, commandErrorf("%s at %d wants %d parameters, %d left", id, i-1, need, left)
			}
			params := make([]Delta, count)
			for j := range params {
				params[j] = Delta{
					DX: DecodeZigZag(stream[i]),
					DY: DecodeZigZag(stream[i+1]),
				}
				i += 2
			}
			cmds = append(cmds, Command{ID: id, Count: count, Params: params})
		default:
			return nil, commandErrorf("invalid command id %d at %d", uint8(id), i-1)
		}
	}
	return cmds, nil
}

// EncodeCommands flattens records back into a geometry stream.
func EncodeCommands(cmds []Command) []uint32 {
	size := 0
	for _, c := range cmds {
		size += 1 + 2*len(c.Params)
	}
	out := make([]uint32, 0, size)
	for _, c := range cmds {
		count := c.Count
		if c.ID != ClosePath {
			count = uint32(len(c.Params))
		} else if count == 0 {
			count = 1
		}
		out = append(out, uint32(c.ID)|count<<cmdBits)
		for _, d := range c.Params {
			out = append(out, EncodeZigZag(d.DX), EncodeZigZag(d.DY))
		}
	}
	return out
}
