package interaction

import (
	"os"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *unix.Termios
	input    chan KeyEvent
	stop     chan struct{}

	// pending holds the start of a rune cut off by the end of a read
	pending []byte
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyClearLine
	KeyInterrupt
	KeyHelp
)

// NewKeyboardReader creates a new keyboard reader
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := &KeyboardReader{
		input: make(chan KeyEvent, 32),
		stop:  make(chan struct{}),
	}

	// Set terminal to raw mode
	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	// Start reading keyboard input
	go kr.readInput()

	return kr, nil
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 64)

	for {
		select {
		case <-kr.stop:
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}

			for _, event := range kr.parseInput(buf[:n]) {
				select {
				case kr.input <- event:
				case <-kr.stop:
					return
				}
			}
		}
	}
}

// parseInput splits one read into key events. A read may carry several
// keys when the user types fast or pastes.
func (kr *KeyboardReader) parseInput(buf []byte) []KeyEvent {
	if len(kr.pending) > 0 {
		buf = append(kr.pending, buf...)
		kr.pending = nil
	}

	var events []KeyEvent
	for len(buf) > 0 {
		switch b := buf[0]; {
		case b == 3: // Ctrl+C
			events = append(events, KeyEvent{Key: 3, Type: KeyInterrupt})
			buf = buf[1:]
		case b == 8 || b == 127:
			events = append(events, KeyEvent{Key: rune(b), Type: KeyBackspace})
			buf = buf[1:]
		case b == '\r' || b == '\n':
			events = append(events, KeyEvent{Key: '\r', Type: KeyEnter})
			buf = buf[1:]
		case b == 21: // Ctrl+U
			events = append(events, KeyEvent{Key: 21, Type: KeyClearLine})
			buf = buf[1:]
		case b == 27: // ESC
			if len(buf) == 1 || (buf[1] != '[' && buf[1] != 'O') {
				events = append(events, KeyEvent{Key: 27, Type: KeyEscape})
				buf = buf[1:]
				continue
			}
			final, size := escapeSequence(buf)
			switch final {
			case 'A':
				events = append(events, KeyEvent{Type: KeyUp})
			case 'B':
				events = append(events, KeyEvent{Type: KeyDown})
			}
			buf = buf[size:]
		case b == '?':
			events = append(events, KeyEvent{Key: '?', Type: KeyHelp})
			buf = buf[1:]
		case b < 32:
			// Other control keys are ignored
			buf = buf[1:]
		default:
			if !utf8.FullRune(buf) {
				kr.pending = append([]byte(nil), buf...)
				return events
			}
			r, size := utf8.DecodeRune(buf)
			if r == utf8.RuneError && size <= 1 {
				buf = buf[1:]
				continue
			}
			events = append(events, KeyEvent{Key: r, Type: KeyChar})
			buf = buf[size:]
		}
	}

	return events
}

// escapeSequence measures the sequence at the start of buf, which begins
// with ESC [ or ESC O. It returns the final byte, or 0 when the sequence is
// cut off, and the number of bytes to consume. Parameters such as the
// modifier in ESC [ 1 ; 5 A are skipped.
func escapeSequence(buf []byte) (byte, int) {
	if buf[1] == 'O' {
		if len(buf) < 3 {
			return 0, len(buf)
		}
		return buf[2], 3
	}

	i := 2
	for i < len(buf) && buf[i] >= 0x20 && buf[i] <= 0x3f {
		i++
	}
	if i < len(buf) && buf[i] >= 0x40 && buf[i] <= 0x7e {
		return buf[i], i + 1
	}
	return 0, i
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	return kr.disableRawMode()
}
