// bxlimconv converts between CLIM/FLIM textures and ordinary image files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/tiff"

	bxlim "github.com/mrjoshuak/go-bxlim"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const usageStr = `bxlimconv converts CLIM and FLIM textures.

Usage:

    bxlimconv info texture...
    bxlimconv export [-o out.png] texture
    bxlimconv import [-o out.bclim] [-base texture] [-variant clim|flim] [-format 9] [-orient 0] image

export writes PNG, JPEG, BMP or TIFF, chosen by the output extension
(PNG when -o is omitted).

import reads BMP, GIF, JPEG, PNG, TIFF or WEBP. With -base the new image
replaces the pixels of an existing texture and keeps its format and
orientation; otherwise a new container is built from -variant, -format
and -orient.
`

var errUsage = errors.New("invalid arguments")

func main() {
	log.SetFlags(0)
	log.SetPrefix("bxlimconv: ")

	if len(os.Args) < 2 {
		os.Stderr.WriteString(usageStr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = info(os.Args[2:])
	case "export":
		err = export(os.Args[2:])
	case "import":
		err = importImage(os.Args[2:])
	case "-h", "-help", "help":
		os.Stdout.WriteString(usageStr)
		return
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, os.Args[1])
	}
	if errors.Is(err, errUsage) {
		os.Stderr.WriteString(usageStr)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func info(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: no texture given", errUsage)
	}

	for _, path := range fs.Args() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		m, err := bxlim.DecodeMetadata(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: %s %dx%d format %d (%s) orientation %#02x tile mode %d data %d bytes, swizzle %s\n",
			path, m.Variant, m.Width, m.Height, m.Format, m.FormatName,
			m.Orientation, m.TileMode, m.DataSize, m.Swizzle)
	}
	return nil
}

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", "", "output image path (default: texture path with .png)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: export takes one texture", errUsage)
	}
	in := fs.Arg(0)
	if *output == "" {
		*output = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	tex, err := bxlim.DecodeAt(f, st.Size())
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	enc, err := encoderFor(*output)
	if err != nil {
		return err
	}
	if err := imgio.Save(*output, tex.Image, enc); err != nil {
		return err
	}
	log.Printf("exported %s -> %s (%dx%d)", in, *output, tex.Image.Rect.Dx(), tex.Image.Rect.Dy())
	return nil
}

// encoderFor picks an image encoder from the output file extension.
func encoderFor(path string) (imgio.Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(95), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	case ".tif", ".tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown output format %q", errUsage, filepath.Ext(path))
}

func importImage(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	output := fs.String("o", "", "output texture path (default: image path with .bclim or .bflim)")
	base := fs.String("base", "", "existing texture whose format and orientation are kept")
	variant := fs.String("variant", "clim", "container variant for new textures: clim or flim")
	format := fs.Uint("format", 9, "format code for new textures")
	orient := fs.Uint("orient", 0, "orientation byte for new textures")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import takes one image", errUsage)
	}
	in := fs.Arg(0)

	img, err := imgio.Open(in)
	if err != nil {
		return err
	}

	var tex *bxlim.Texture
	if *base != "" {
		data, err := os.ReadFile(*base)
		if err != nil {
			return err
		}
		if tex, err = bxlim.Parse(data); err != nil {
			return fmt.Errorf("%s: %w", *base, err)
		}
		tex.SetImage(img)
	} else {
		if *format > 0xFF || *orient > 0xFF {
			return fmt.Errorf("%w: -format and -orient must fit in a byte", errUsage)
		}
		o := &bxlim.Options{Format: uint8(*format), Orientation: uint8(*orient)}
		switch strings.ToLower(*variant) {
		case "clim":
			o.Variant = bxlim.VariantCLIM
		case "flim":
			o.Variant = bxlim.VariantFLIM
		default:
			return fmt.Errorf("%w: unknown variant %q", errUsage, *variant)
		}
		if tex, err = bxlim.NewTexture(img, o); err != nil {
			return err
		}
	}

	if *output == "" {
		ext := ".bclim"
		if tex.Variant() != bxlim.VariantCLIM {
			ext = ".bflim"
		}
		*output = strings.TrimSuffix(in, filepath.Ext(in)) + ext
	}

	data, err := tex.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return err
	}
	m := tex.Metadata()
	log.Printf("imported %s -> %s (%s %s %dx%d)", in, *output, m.Variant, m.FormatName, m.Width, m.Height)
	return nil
}
