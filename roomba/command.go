package roomba

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Command is a single frame: an opcode followed by its fixed length payload.
// Build it, fill Data by offset, then hand it to a Session; it is not modified
// after that.
type Command struct {
	Op   Opcode
	Data []byte
}

// NewCommand returns a command with a zero filled payload of exactly size bytes.
func NewCommand(op Opcode, size int) *Command {
	return &Command{Op: op, Data: make([]byte, size)}
}

// NewSimpleCommand returns a command without payload.
func NewSimpleCommand(op Opcode) *Command {
	return NewCommand(op, 0)
}

// Validate reports a payload whose length does not match the opcode. Unknown
// opcodes are not checked.
func (c *Command) Validate() error {
	if want, ok := PayloadLen(c.Op); ok && len(c.Data) != want {
		return errors.Errorf("%s payload is %d bytes, expected %d", c.Op, len(c.Data), want)
	}
	return nil
}

// ToPacket returns the wire bytes of the command.
func (c *Command) ToPacket() []byte {
	packet := make([]byte, 0, 1+len(c.Data))
	packet = append(packet, byte(c.Op))
	return append(packet, c.Data...)
}

// String renders the command as decimal bytes, e.g. "command 168 1 14 30".
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString("command ")
	sb.WriteString(strconv.Itoa(int(c.Op)))
	for _, b := range c.Data {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(int(b)))
	}
	return sb.String()
}
