package command

import (
	"encoding/binary"
	"io"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Version of the payload schema.
const Version = 1

// HeaderSize is the size of the little-endian length prefix.
const HeaderSize = 8

// DefaultMaxFrame bounds payloads when no other limit is configured.
const DefaultMaxFrame = 4 << 20

// Errors returned by the codec.
var (
	ErrFrameTooLarge = errors.New("frame too large")
	ErrVersion       = errors.New("unsupported payload version")
	ErrNoOpcode      = errors.New("missing opcode")
)

// envelope is the payload on the wire. The command fields are listed
// rather than embedded; go-json cannot compile an embedded recursive type.
type envelope struct {
	V        int            `json:"v"`
	Op       Opcode         `json:"op"`
	Args     map[string]any `json:"args,omitempty"`
	Commands []Command      `json:"commands,omitempty"`
}

// Response answers get-state. Found is false when the key is absent.
type Response struct {
	Found bool `json:"found"`
	Value any  `json:"value,omitempty"`
}

// Encode serialises c.
func Encode(c Command) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{V: Version, Op: c.Op, Args: c.Args, Commands: c.Commands})
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Command{}, errors.Wrap(err, "decode command")
	}
	if env.V != Version {
		return Command{}, errors.Wrapf(ErrVersion, "version %d", env.V)
	}
	c := Command{Op: env.Op, Args: env.Args, Commands: env.Commands}
	if err := validate(c); err != nil {
		return Command{}, err
	}
	return c, nil
}

func validate(c Command) error {
	if c.Op == "" {
		return ErrNoOpcode
	}
	for _, sub := range c.Commands {
		if err := validate(sub); err != nil {
			return err
		}
	}
	return nil
}

// WriteFrame writes payload with its length prefix.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.LittleEndian.PutUint64(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one length-prefixed payload of at most limit bytes.
func ReadFrame(r io.Reader, limit int) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "read frame header")
	}
	n := binary.LittleEndian.Uint64(header[:])
	if n > uint64(limit) {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d > %d bytes", n, limit)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "read frame payload")
	}
	return payload, nil
}

// Write encodes c as one frame.
func Write(w io.Writer, c Command) error {
	payload, err := Encode(c)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// Read decodes one framed command.
func Read(r io.Reader, limit int) (Command, error) {
	payload, err := ReadFrame(r, limit)
	if err != nil {
		return Command{}, err
	}
	return Decode(payload)
}

// WriteResponse writes a framed get-state response.
func WriteResponse(w io.Writer, resp Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// ReadResponse reads a framed get-state response.
func ReadResponse(r io.Reader, limit int) (Response, error) {
	payload, err := ReadFrame(r, limit)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Response{}, errors.Wrap(err, "decode response")
	}
	return resp, nil
}
