package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"png data url", "data:image/png;base64,AAAA", "\x00\x00\x00", false},
		{"bare base64", "aGVsbG8=", "hello", false},
		{"not base64 encoded", "data:image/png,rawbytes", "", true},
		{"missing comma", "data:image/png;base64", "", true},
		{"invalid payload", "data:image/png;base64,!!!", "", true},
		{"empty payload", "data:image/png;base64,", "", true},
	}
	for _, tt := range tests {
		got, err := DecodeDataURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: DecodeDataURL error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && string(got) != tt.want {
			t.Errorf("%s: DecodeDataURL = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirPrompterUsesConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	p := DirPrompter{Dir: dir}

	path, ok := p.PromptSavePath("foo-codesnap.png")
	if !ok {
		t.Fatal("prompter declined")
	}
	if path != filepath.Join(dir, "foo-codesnap.png") {
		t.Errorf("path = %q", path)
	}
}

func TestDirPrompterAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	p := DirPrompter{Dir: dir}

	for _, name := range []string{"x-codesnap.png", "x-codesnap-2.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("占"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	path, ok := p.PromptSavePath("x-codesnap.png")
	if !ok {
		t.Fatal("prompter declined")
	}
	if path != filepath.Join(dir, "x-codesnap-3.png") {
		t.Errorf("path = %q, want x-codesnap-3.png in %q", path, dir)
	}
}

func TestDirPrompterStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	p := DirPrompter{Dir: dir}

	path, ok := p.PromptSavePath("../../etc/shadow.png")
	if !ok {
		t.Fatal("prompter declined")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %q escaped the prompt directory", path)
	}
}

type cancelPrompter struct{}

func (cancelPrompter) PromptSavePath(string) (string, bool) { return "", false }

func TestSinkSavePNG(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(DirPrompter{Dir: dir}, nil, nil)

	png := []byte{0x89, 'P', 'N', 'G'}
	path, err := sink.SavePNG(context.Background(), png, "main-codesnap.png")
	if err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(png) {
		t.Error("written bytes differ from payload")
	}
}

func TestSinkSaveCancelled(t *testing.T) {
	sink := NewSink(cancelPrompter{}, nil, nil)
	_, err := sink.SavePNG(context.Background(), []byte("x"), "a.png")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}
