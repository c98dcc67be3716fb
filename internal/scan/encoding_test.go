package scan

import (
	"testing"
)

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantEnc    bool
		wantDetect bool
		wantErr    bool
	}{
		{
			name:  "empty name reads bytes as they are",
			input: "",
		},
		{
			name:  "utf-8 needs no decoder",
			input: "utf-8",
		},
		{
			name:  "utf8 alias",
			input: "UTF8",
		},
		{
			name:       "auto enables detection",
			input:      "auto",
			wantDetect: true,
		},
		{
			name:       "auto is case insensitive",
			input:      "AUTO",
			wantDetect: true,
		},
		{
			name:    "latin-1 resolves to a decoder",
			input:   "ISO-8859-1",
			wantEnc: true,
		},
		{
			name:    "shift jis resolves to a decoder",
			input:   "Shift_JIS",
			wantEnc: true,
		},
		{
			name:    "unknown name fails",
			input:   "no-such-encoding",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, detect, err := ResolveEncoding(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveEncoding(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if (enc != nil) != tt.wantEnc {
				t.Errorf("ResolveEncoding(%q) enc = %v, want enc %v", tt.input, enc, tt.wantEnc)
			}
			if detect != tt.wantDetect {
				t.Errorf("ResolveEncoding(%q) detect = %v, want %v", tt.input, detect, tt.wantDetect)
			}
		})
	}
}

func TestDetectCharsetEmptyPrefix(t *testing.T) {
	if enc := detectCharset(nil); enc != nil {
		t.Errorf("detectCharset(nil) = %v, want nil", enc)
	}
}

func TestDetectCharsetUTF8NeedsNoDecoder(t *testing.T) {
	text := []byte("Привет, мир! Это достаточно длинный текст в UTF-8, чтобы детектор распознал его уверенно.")
	if enc := detectCharset(text); enc != nil {
		t.Errorf("detectCharset(utf-8 text) = %v, want nil", enc)
	}
}

func TestDetectCharsetUTF16ByteOrderMark(t *testing.T) {
	text := []byte{0xff, 0xfe, 'h', 0, 'i', 0, '\n', 0}
	if enc := detectCharset(text); enc == nil {
		t.Error("detectCharset(utf-16le text) = nil, want a decoder")
	}
}
