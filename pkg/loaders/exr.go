package loaders

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// OpenEXR scanline images. Single-part files with uncompressed, RLE, ZIPS or
// ZIP chunks and HALF, FLOAT or UINT channels can be read; images are
// written as FLOAT B, G, R channels in ZIP chunks.

const exrMagic = 20000630

const (
	exrNoCompression   = 0
	exrRLECompression  = 1
	exrZIPSCompression = 2
	exrZIPCompression  = 3
)

const (
	exrUint  = 0
	exrHalf  = 1
	exrFloat = 2
)

const (
	exrTiledFlag     = 0x200
	exrNonImageFlag  = 0x800
	exrMultipartFlag = 0x1000
)

var errEXRTruncated = errors.New("truncated OpenEXR data")

type exrChannel struct {
	name      string
	pixelType int32
	xSampling int32
	ySampling int32
}

func (c exrChannel) size() int {
	if c.pixelType == exrHalf {
		return 2
	}
	return 4
}

type exrHeader struct {
	channels    []exrChannel
	compression byte
	xMin, yMin  int32
	xMax, yMax  int32
}

func (h *exrHeader) width() int {
	return int(h.xMax-h.xMin) + 1
}

func (h *exrHeader) height() int {
	return int(h.yMax-h.yMin) + 1
}

// linesPerChunk is the number of scanlines stored in one chunk
func linesPerChunk(compression byte) int {
	if compression == exrZIPCompression {
		return 16
	}
	return 1
}

// exrReader walks a little-endian byte slice and remembers the first overrun
type exrReader struct {
	data []byte
	pos  int
	err  error
}

func (r *exrReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos < 0 || r.pos+n > len(r.data) {
		r.err = errEXRTruncated
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *exrReader) uint32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *exrReader) int32() int32 {
	return int32(r.uint32())
}

func (r *exrReader) uint64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// cstring reads a null-terminated string
func (r *exrReader) cstring() string {
	if r.err != nil {
		return ""
	}
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		r.err = errEXRTruncated
		return ""
	}
	s := string(r.data[r.pos : r.pos+end])
	r.pos += end + 1
	return s
}

// DecodeEXR reads a scanline OpenEXR image. The pixels hold the stored
// linear values; an image with only a Y channel is returned as grey.
func DecodeEXR(r io.Reader) (*ImageData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	rd := &exrReader{data: data}
	if rd.uint32() != exrMagic {
		return nil, errors.New("not an OpenEXR file")
	}
	version := rd.uint32()
	if version&0xff != 2 {
		return nil, fmt.Errorf("unsupported OpenEXR version %d", version&0xff)
	}
	if version&(exrTiledFlag|exrNonImageFlag|exrMultipartFlag) != 0 {
		return nil, errors.New("only single-part scanline OpenEXR images are supported")
	}

	header, err := readEXRHeader(rd)
	if err != nil {
		return nil, err
	}

	width, height := header.width(), header.height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid data window %dx%d", width, height)
	}

	slots, err := exrChannelSlots(header.channels)
	if err != nil {
		return nil, err
	}

	lineSize := 0
	for _, c := range header.channels {
		lineSize += width * c.size()
	}

	lines := linesPerChunk(header.compression)
	offsets := make([]uint64, (height+lines-1)/lines)
	for i := range offsets {
		offsets[i] = rd.uint64()
	}
	if rd.err != nil {
		return nil, rd.err
	}

	pixels := make([]core.Vec3, width*height)
	for _, offset := range offsets {
		if offset > uint64(len(data)) {
			return nil, errEXRTruncated
		}
		rd.pos = int(offset)
		y := int(rd.int32())
		packed := rd.bytes(int(rd.int32()))
		if rd.err != nil {
			return nil, rd.err
		}

		row := y - int(header.yMin)
		if row < 0 || row >= height {
			return nil, fmt.Errorf("chunk scanline %d outside the data window", y)
		}
		n := lines
		if row+n > height {
			n = height - row
		}

		raw, err := exrDecompress(header.compression, packed, n*lineSize)
		if err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}

		for k := 0; k < n; k++ {
			line := raw[k*lineSize : (k+1)*lineSize]
			exrStoreLine(line, header.channels, slots, width, pixels[(row+k)*width:(row+k+1)*width])
		}
	}

	return &ImageData{Width: width, Height: height, Pixels: pixels, Format: "exr"}, nil
}

func readEXRHeader(rd *exrReader) (*exrHeader, error) {
	header := &exrHeader{compression: exrNoCompression}
	seen := map[string]bool{}

	for {
		name := rd.cstring()
		if rd.err != nil {
			return nil, rd.err
		}
		if name == "" {
			break
		}
		kind := rd.cstring()
		value := rd.bytes(int(rd.int32()))
		if rd.err != nil {
			return nil, rd.err
		}
		seen[name] = true

		switch {
		case name == "channels" && kind == "chlist":
			channels, err := readEXRChannels(value)
			if err != nil {
				return nil, err
			}
			header.channels = channels
		case name == "compression" && kind == "compression":
			if len(value) != 1 {
				return nil, errors.New("invalid compression attribute")
			}
			header.compression = value[0]
		case name == "dataWindow" && kind == "box2i":
			if len(value) != 16 {
				return nil, errors.New("invalid dataWindow attribute")
			}
			header.xMin = int32(binary.LittleEndian.Uint32(value[0:]))
			header.yMin = int32(binary.LittleEndian.Uint32(value[4:]))
			header.xMax = int32(binary.LittleEndian.Uint32(value[8:]))
			header.yMax = int32(binary.LittleEndian.Uint32(value[12:]))
		}
	}

	for _, required := range []string{"channels", "dataWindow"} {
		if !seen[required] {
			return nil, fmt.Errorf("missing %s attribute", required)
		}
	}
	switch header.compression {
	case exrNoCompression, exrRLECompression, exrZIPSCompression, exrZIPCompression:
	default:
		return nil, fmt.Errorf("unsupported OpenEXR compression %d", header.compression)
	}
	return header, nil
}

func readEXRChannels(value []byte) ([]exrChannel, error) {
	rd := &exrReader{data: value}
	var channels []exrChannel
	for {
		name := rd.cstring()
		if rd.err != nil {
			return nil, rd.err
		}
		if name == "" {
			break
		}
		c := exrChannel{name: name, pixelType: rd.int32()}
		rd.bytes(4) // pLinear and reserved
		c.xSampling = rd.int32()
		c.ySampling = rd.int32()
		if rd.err != nil {
			return nil, rd.err
		}
		if c.pixelType < exrUint || c.pixelType > exrFloat {
			return nil, fmt.Errorf("channel %s: unknown pixel type %d", name, c.pixelType)
		}
		if c.xSampling != 1 || c.ySampling != 1 {
			return nil, fmt.Errorf("channel %s: subsampled channels are not supported", name)
		}
		channels = append(channels, c)
	}
	if len(channels) == 0 {
		return nil, errors.New("image has no channels")
	}
	return channels, nil
}

// exrChannelSlots maps every channel to the pixel component it fills:
// 0, 1, 2 for R, G, B, 3 for a luminance channel and -1 when unused
func exrChannelSlots(channels []exrChannel) ([]int, error) {
	slots := make([]int, len(channels))
	found := false
	for i, c := range channels {
		switch c.name {
		case "R":
			slots[i] = 0
		case "G":
			slots[i] = 1
		case "B":
			slots[i] = 2
		case "Y":
			slots[i] = 3
		default:
			slots[i] = -1
			continue
		}
		found = true
	}
	if !found {
		return nil, errors.New("image has no R, G, B or Y channel")
	}
	return slots, nil
}

// exrStoreLine decodes one scanline, stored channel after channel
func exrStoreLine(line []byte, channels []exrChannel, slots []int, width int, row []core.Vec3) {
	offset := 0
	for i, c := range channels {
		size := c.size()
		for x := 0; x < width; x++ {
			v := exrValue(line[offset+x*size:], c.pixelType)
			switch slots[i] {
			case 0:
				row[x].X = v
			case 1:
				row[x].Y = v
			case 2:
				row[x].Z = v
			case 3:
				row[x] = core.NewVec3(v, v, v)
			}
		}
		offset += width * size
	}
}

func exrValue(b []byte, pixelType int32) float64 {
	switch pixelType {
	case exrHalf:
		return float64(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())
	case exrFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return float64(binary.LittleEndian.Uint32(b))
}

// exrDecompress returns the rawSize bytes of a chunk. Chunks that did not
// shrink under compression are stored raw.
func exrDecompress(compression byte, packed []byte, rawSize int) ([]byte, error) {
	if compression == exrNoCompression || len(packed) == rawSize {
		if len(packed) != rawSize {
			return nil, fmt.Errorf("chunk holds %d bytes, want %d", len(packed), rawSize)
		}
		return packed, nil
	}

	var tmp []byte
	switch compression {
	case exrRLECompression:
		var err error
		if tmp, err = exrRLEDecode(packed, rawSize); err != nil {
			return nil, err
		}
	case exrZIPSCompression, exrZIPCompression:
		zr, err := zlib.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, err
		}
		tmp = make([]byte, rawSize)
		if _, err := io.ReadFull(zr, tmp); err != nil {
			return nil, err
		}
	}

	// Undo the delta predictor, then the split into even and odd bytes
	for i := 1; i < len(tmp); i++ {
		tmp[i] = tmp[i-1] + tmp[i] - 128
	}
	raw := make([]byte, rawSize)
	half := (rawSize + 1) / 2
	for i := range raw {
		if i%2 == 0 {
			raw[i] = tmp[i/2]
		} else {
			raw[i] = tmp[half+i/2]
		}
	}
	return raw, nil
}

// exrRLEDecode expands runs: a negative count -n is followed by n literal
// bytes, a count n >= 0 by one byte repeated n+1 times
func exrRLEDecode(packed []byte, rawSize int) ([]byte, error) {
	out := make([]byte, 0, rawSize)
	for i := 0; i < len(packed); {
		count := int(int8(packed[i]))
		i++
		if count < 0 {
			n := -count
			if i+n > len(packed) {
				return nil, errEXRTruncated
			}
			out = append(out, packed[i:i+n]...)
			i += n
		} else {
			if i >= len(packed) {
				return nil, errEXRTruncated
			}
			for k := 0; k <= count; k++ {
				out = append(out, packed[i])
			}
			i++
		}
	}
	if len(out) != rawSize {
		return nil, fmt.Errorf("run-length data expands to %d bytes, want %d", len(out), rawSize)
	}
	return out, nil
}

// EncodeEXR writes linear pixels, row 0 at the top, as a FLOAT RGB
// OpenEXR image with ZIP compression
func EncodeEXR(w io.Writer, width, height int, pixels []core.Vec3) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return fmt.Errorf("invalid image %dx%d with %d pixels", width, height, len(pixels))
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	put32 := func(v uint32) { binary.Write(&buf, le, v) }

	put32(exrMagic)
	put32(2)

	attribute := func(name, kind string, value []byte) {
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.WriteString(kind)
		buf.WriteByte(0)
		put32(uint32(len(value)))
		buf.Write(value)
	}

	// Channels are stored in alphabetical order
	var chlist bytes.Buffer
	for _, name := range []string{"B", "G", "R"} {
		chlist.WriteString(name)
		chlist.WriteByte(0)
		binary.Write(&chlist, le, []int32{exrFloat, 0, 1, 1})
	}
	chlist.WriteByte(0)

	box := func(values ...int32) []byte {
		var b bytes.Buffer
		binary.Write(&b, le, values)
		return b.Bytes()
	}
	float := func(values ...float32) []byte {
		var b bytes.Buffer
		binary.Write(&b, le, values)
		return b.Bytes()
	}

	window := box(0, 0, int32(width-1), int32(height-1))
	attribute("channels", "chlist", chlist.Bytes())
	attribute("compression", "compression", []byte{exrZIPCompression})
	attribute("dataWindow", "box2i", window)
	attribute("displayWindow", "box2i", window)
	attribute("lineOrder", "lineOrder", []byte{0})
	attribute("pixelAspectRatio", "float", float(1))
	attribute("screenWindowCenter", "v2f", float(0, 0))
	attribute("screenWindowWidth", "float", float(1))
	buf.WriteByte(0)

	lines := linesPerChunk(exrZIPCompression)
	chunks := make([][]byte, 0, (height+lines-1)/lines)
	for y := 0; y < height; y += lines {
		n := lines
		if y+n > height {
			n = height - y
		}
		packed, err := exrCompress(exrRawLines(pixels[y*width:(y+n)*width], width, n))
		if err != nil {
			return err
		}
		chunks = append(chunks, packed)
	}

	offset := uint64(buf.Len() + 8*len(chunks))
	for _, chunk := range chunks {
		binary.Write(&buf, le, offset)
		offset += uint64(8 + len(chunk))
	}
	for i, chunk := range chunks {
		put32(uint32(i * lines))
		put32(uint32(len(chunk)))
		buf.Write(chunk)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// exrRawLines lays out n scanlines as B, G, R FLOAT runs per line
func exrRawLines(pixels []core.Vec3, width, n int) []byte {
	raw := make([]byte, 0, n*width*12)
	var word [4]byte
	for k := 0; k < n; k++ {
		row := pixels[k*width : (k+1)*width]
		for channel := 2; channel >= 0; channel-- {
			for _, p := range row {
				v := p.Z
				if channel == 1 {
					v = p.Y
				} else if channel == 0 {
					v = p.X
				}
				binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(v)))
				raw = append(raw, word[:]...)
			}
		}
	}
	return raw
}

// exrPredict splits even and odd bytes and delta encodes the result, the
// inverse of the reordering done in exrDecompress
func exrPredict(raw []byte) []byte {
	tmp := make([]byte, len(raw))
	half := (len(raw) + 1) / 2
	for i, b := range raw {
		if i%2 == 0 {
			tmp[i/2] = b
		} else {
			tmp[half+i/2] = b
		}
	}
	for i := len(tmp) - 1; i > 0; i-- {
		tmp[i] = tmp[i] - tmp[i-1] + 128
	}
	return tmp
}

// exrCompress deflates the predicted bytes, keeping the raw bytes when that
// is not smaller
func exrCompress(raw []byte) ([]byte, error) {
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	if _, err := zw.Write(exrPredict(raw)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if packed.Len() >= len(raw) {
		return raw, nil
	}
	return packed.Bytes(), nil
}
