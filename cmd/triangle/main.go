// Command triangle renders the built-in triangle offscreen and writes the
// frame to an image file, or prints the shader program for a target.
//
// Usage:
//
//	triangle [-backend vulkan|noop] [-width 640] [-height 480] [-output triangle.png] [-v]
//	triangle -emit wgsl|msl|glsl|hlsl|spirv [-output file]
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/backend"
	_ "github.com/gogpu/triangle/backend/native" // registers vulkan and noop
	"github.com/gogpu/triangle/shader"
)

func main() {
	var (
		backendName = flag.String("backend", "", "HAL backend (default: first available of "+strings.Join(backend.Available(), ", ")+")")
		width       = flag.Uint("width", 640, "image width")
		height      = flag.Uint("height", 480, "image height")
		output      = flag.String("output", "triangle.png", "output file (.png, .bmp, .tif); - for stdout with -emit")
		emit        = flag.String("emit", "", "print the shader for wgsl, msl, glsl, hlsl or spirv instead of rendering")
		verbose     = flag.Bool("v", false, "log every render step")
	)
	flag.Parse()

	if *verbose {
		triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if *emit != "" {
		out := *output
		if !isFlagSet("output") {
			out = "-"
		}
		if err := emitShader(*emit, out); err != nil {
			log.Fatalf("emit: %v", err)
		}
		return
	}

	if *width == 0 || *height == 0 || *width > 1<<14 || *height > 1<<14 {
		log.Fatalf("invalid size %dx%d", *width, *height)
	}
	if err := render(*backendName, uint32(*width), uint32(*height), *output); err != nil { //nolint:gosec // bounded above
		if triangle.IsEnvironmentError(err) {
			log.Fatalf("no usable GPU: %v", err)
		}
		log.Fatalf("render: %v", err)
	}
	log.Printf("Triangle saved to %s (%dx%d)\n", *output, *width, *height)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

type readbacker interface {
	Readback() (*image.RGBA, error)
}

func render(name string, width, height uint32, output string) error {
	var (
		b   backend.Backend
		err error
	)
	if name == "" {
		b, err = backend.InitDefault()
	} else {
		b, err = backend.Init(name)
	}
	if err != nil {
		return err
	}
	defer b.Close()

	surface, err := b.NewSurface(width, height)
	if err != nil {
		return err
	}
	r := triangle.NewRenderer()
	defer r.Close()
	if err := r.RenderFrame(b, surface); err != nil {
		return err
	}

	rb, ok := surface.(readbacker)
	if !ok {
		return fmt.Errorf("backend %s cannot read frames back", b.Name())
	}
	img, err := rb.Readback()
	if err != nil {
		return err
	}
	return writeImage(output, img)
}

// createFile opens an output file. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

func writeImage(path string, img image.Image) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode(f, img)
	case ".bmp":
		return bmp.Encode(f, img)
	case ".tif", ".tiff":
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format %q", ext)
	}
}

func emitShader(target, output string) (err error) {
	prog, err := shader.Default()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, cerr := createFile(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if target == "spirv" {
		_, err := w.Write(prog.Bytes())
		return err
	}
	t, err := shader.ParseTarget(target)
	if err != nil {
		return err
	}
	tr, err := prog.Translate(t)
	if err != nil {
		return err
	}
	if t == shader.TargetWGSL {
		_, err = io.WriteString(w, tr.Vertex)
		return err
	}
	_, err = fmt.Fprintf(w, "// %s vertex stage\n%s\n// %s fragment stage\n%s", t, tr.Vertex, t, tr.Fragment)
	return err
}
