package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestNewRingBuffer(t *testing.T) {
	t.Run("default size", func(t *testing.T) {
		rb := NewRingBuffer(0)
		if rb.Cap() != DefaultBufferLines {
			t.Errorf("expected capacity %d, got %d", DefaultBufferLines, rb.Cap())
		}
	})

	t.Run("custom size", func(t *testing.T) {
		rb := NewRingBuffer(50)
		if rb.Cap() != 50 {
			t.Errorf("expected capacity 50, got %d", rb.Cap())
		}
	})

	t.Run("negative size uses default", func(t *testing.T) {
		rb := NewRingBuffer(-5)
		if rb.Cap() != DefaultBufferLines {
			t.Errorf("expected capacity %d, got %d", DefaultBufferLines, rb.Cap())
		}
	})
}

func TestRingBuffer_Write(t *testing.T) {
	t.Run("single line keeps terminator", func(t *testing.T) {
		rb := NewRingBuffer(10)
		n, err := rb.Write([]byte("hello\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 6 {
			t.Errorf("expected 6 bytes written, got %d", n)
		}
		lines := rb.Lines(0)
		if len(lines) != 1 || lines[0] != "hello\n" {
			t.Errorf("expected [%q], got %q", "hello\n", lines)
		}
	})

	t.Run("multiple lines", func(t *testing.T) {
		rb := NewRingBuffer(10)
		rb.WriteString("line1\nline2\nline3\n")
		if rb.Len() != 3 {
			t.Errorf("expected 3 entries, got %d", rb.Len())
		}
	})

	t.Run("trailing partial stored without terminator", func(t *testing.T) {
		rb := NewRingBuffer(10)
		rb.WriteString("complete\npartial")
		lines := rb.Lines(0)
		if len(lines) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(lines))
		}
		if lines[0] != "complete\n" {
			t.Errorf("expected %q, got %q", "complete\n", lines[0])
		}
		if lines[1] != "partial" {
			t.Errorf("expected %q, got %q", "partial", lines[1])
		}
	})

	t.Run("concatenation reproduces the stream", func(t *testing.T) {
		rb := NewRingBuffer(10)
		chunks := []string{"ab", "cd\nef", "gh\n", "tail"}
		for _, c := range chunks {
			rb.WriteString(c)
		}
		want := "abcd\nefgh\ntail"
		if got := rb.All(); got != want {
			t.Errorf("All() = %q, want %q", got, want)
		}
	})

	t.Run("CRLF and CR normalize to LF", func(t *testing.T) {
		rb := NewRingBuffer(10)
		rb.WriteString("one\r\ntwo\rthree\n")
		lines := rb.Lines(0)
		want := []string{"one\n", "two\n", "three\n"}
		if len(lines) != len(want) {
			t.Fatalf("expected %d entries, got %d: %q", len(want), len(lines), lines)
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("entry %d = %q, want %q", i, lines[i], want[i])
			}
		}
	})

	t.Run("empty write", func(t *testing.T) {
		rb := NewRingBuffer(10)
		n, err := rb.Write(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes, got %d", n)
		}
		if rb.Len() != 0 {
			t.Errorf("expected empty buffer, got %d entries", rb.Len())
		}
	})
}

func TestRingBuffer_Truncation(t *testing.T) {
	t.Run("keeps last capacity entries in order", func(t *testing.T) {
		rb := NewRingBuffer(5)
		for i := 0; i < 8; i++ {
			rb.WriteString(fmt.Sprintf("line%d\n", i))
		}
		if rb.Len() != 5 {
			t.Fatalf("expected 5 entries, got %d", rb.Len())
		}
		lines := rb.Lines(0)
		for i, line := range lines {
			want := fmt.Sprintf("line%d\n", i+3)
			if line != want {
				t.Errorf("entry %d = %q, want %q", i, line, want)
			}
		}
	})

	t.Run("never exceeds capacity mid-write", func(t *testing.T) {
		rb := NewRingBuffer(DefaultBufferLines)
		var sb strings.Builder
		for i := 0; i < DefaultBufferLines+50; i++ {
			fmt.Fprintf(&sb, "line%d\n", i)
		}
		rb.WriteString(sb.String())
		if rb.Len() != DefaultBufferLines {
			t.Errorf("expected %d entries, got %d", DefaultBufferLines, rb.Len())
		}
		lines := rb.Lines(0)
		if lines[0] != "line50\n" {
			t.Errorf("oldest entry = %q, want %q", lines[0], "line50\n")
		}
	})

	t.Run("truncation law for short sequences", func(t *testing.T) {
		rb := NewRingBuffer(DefaultBufferLines)
		for i := 0; i < 120; i++ {
			rb.WriteString(fmt.Sprintf("entry%d\n", i))
		}
		if rb.Len() != 120 {
			t.Errorf("expected 120 entries, got %d", rb.Len())
		}
		lines := rb.Lines(0)
		if lines[0] != "entry0\n" || lines[119] != "entry119\n" {
			t.Errorf("unexpected boundary entries: first=%q last=%q", lines[0], lines[119])
		}
	})
}

func TestRingBuffer_Lines(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.WriteString("a\nb\nc\nd\n")

	t.Run("last n", func(t *testing.T) {
		lines := rb.Lines(2)
		if len(lines) != 2 || lines[0] != "c\n" || lines[1] != "d\n" {
			t.Errorf("Lines(2) = %q", lines)
		}
	})

	t.Run("n larger than stored returns all", func(t *testing.T) {
		lines := rb.Lines(100)
		if len(lines) != 4 {
			t.Errorf("Lines(100) returned %d entries", len(lines))
		}
	})

	t.Run("empty buffer returns nil", func(t *testing.T) {
		empty := NewRingBuffer(10)
		if lines := empty.Lines(5); lines != nil {
			t.Errorf("expected nil, got %q", lines)
		}
	})
}

func TestRingBuffer_Last(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.WriteString("a\nb\nc\n")

	if got := rb.Last(2); got != "b\nc\n" {
		t.Errorf("Last(2) = %q, want %q", got, "b\nc\n")
	}
	if got := rb.Last(0); got != "a\nb\nc\n" {
		t.Errorf("Last(0) = %q, want %q", got, "a\nb\nc\n")
	}
}

func TestRingBuffer_Clear(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.WriteString("a\nb\n")
	rb.Clear()
	if rb.Len() != 0 {
		t.Errorf("expected empty buffer after Clear, got %d", rb.Len())
	}
	if got := rb.All(); got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}

func TestRingBuffer_ConcurrentWrites(t *testing.T) {
	rb := NewRingBuffer(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rb.WriteString(fmt.Sprintf("writer%d-%d\n", n, j))
			}
		}(i)
	}
	wg.Wait()

	if rb.Len() != 100 {
		t.Errorf("expected full buffer, got %d entries", rb.Len())
	}
}
