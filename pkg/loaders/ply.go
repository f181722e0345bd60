package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string
	Elements []PLYElement
}

// PLYElement is an element block such as "vertex" or "face"
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the vertex and face data of a PLY file. Polygons are
// split into triangle fans, so a quad (a b c d) becomes (a b c) and (a c d).
type PLYData struct {
	Vertices  []core.Vec3
	Normals   []core.Vec3 // empty if not present
	TexCoords []core.Vec2 // empty if not present
	Faces     []int       // 3 indices per triangle
}

// element returns the header element with the given name
func (h *PLYHeader) element(name string) (PLYElement, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return PLYElement{}, false
}

// LoadPLY loads a PLY file
func LoadPLY(filename string) (*PLYData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debugf("loaded %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces)/3, time.Since(startTime))
	return data, nil
}

// ReadPLY decodes an ascii or binary PLY stream
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		scanner.Split(bufio.ScanWords)
		values = &asciiValueReader{scanner: scanner}
	case "binary_little_endian":
		values = &binaryValueReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	data := &PLYData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, data)
		case "face":
			err = readFaces(values, element, data)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", element.Name, err)
		}
	}

	for _, index := range data.Faces {
		if index < 0 || index >= len(data.Vertices) {
			return nil, fmt.Errorf("face index %d out of range (%d vertices)", index, len(data.Vertices))
		}
	}

	return data, nil
}

// parsePLYHeader reads up to and including the end_header line, leaving the
// reader at the first data byte
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	first, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(first) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Props = append(current.Props, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword %q", parts[0])
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown list types %s %s", prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown property type %s", prop.Type)
		}
	}

	return prop, nil
}

func readVertices(values plyValueReader, element PLYElement, data *PLYData) error {
	hasNormals, hasTexCoords := false, false
	for _, prop := range element.Props {
		switch prop.Name {
		case "nx", "ny", "nz":
			hasNormals = true
		case "u", "s", "texture_u", "v", "t", "texture_v":
			hasTexCoords = true
		}
	}

	data.Vertices = make([]core.Vec3, 0, element.Count)
	if hasNormals {
		data.Normals = make([]core.Vec3, 0, element.Count)
	}
	if hasTexCoords {
		data.TexCoords = make([]core.Vec2, 0, element.Count)
	}

	for i := 0; i < element.Count; i++ {
		var position, normal core.Vec3
		var uv core.Vec2

		for _, prop := range element.Props {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return err
				}
				continue
			}

			value, err := values.value(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}

			switch prop.Name {
			case "x":
				position.X = value
			case "y":
				position.Y = value
			case "z":
				position.Z = value
			case "nx":
				normal.X = value
			case "ny":
				normal.Y = value
			case "nz":
				normal.Z = value
			case "u", "s", "texture_u":
				uv.X = value
			case "v", "t", "texture_v":
				uv.Y = value
			}
		}

		data.Vertices = append(data.Vertices, position)
		if hasNormals {
			data.Normals = append(data.Normals, normal)
		}
		if hasTexCoords {
			data.TexCoords = append(data.TexCoords, uv)
		}
	}
	return nil
}

func readFaces(values plyValueReader, element PLYElement, data *PLYData) error {
	for i := 0; i < element.Count; i++ {
		var polygon []int

		for _, prop := range element.Props {
			if !prop.IsList {
				if _, err := values.value(prop.Type); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				if err := skipList(values, prop); err != nil {
					return err
				}
				continue
			}

			count, err := values.value(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			polygon = make([]int, int(count))
			for k := range polygon {
				index, err := values.value(prop.DataType)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				polygon[k] = int(index)
			}
		}

		for k := 1; k+1 < len(polygon); k++ {
			data.Faces = append(data.Faces, polygon[0], polygon[k], polygon[k+1])
		}
	}
	return nil
}

func skipElement(values plyValueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			var err error
			if prop.IsList {
				err = skipList(values, prop)
			} else {
				_, err = values.value(prop.Type)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func skipList(values plyValueReader, prop PLYProperty) error {
	count, err := values.value(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := values.value(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// getTypeSize returns the byte size of a PLY scalar type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValueReader yields the next scalar of the data section as a float64
type plyValueReader interface {
	value(dataType string) (float64, error)
}

type asciiValueReader struct {
	scanner *bufio.Scanner
}

func (a *asciiValueReader) value(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return v, nil
}

type binaryValueReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryValueReader) value(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown type %s", dataType)
	}
	bytes := b.buf[:size]
	if _, err := io.ReadFull(b.reader, bytes); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(bytes[0])), nil
	case "uchar", "uint8":
		return float64(bytes[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(bytes))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(bytes)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(bytes))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(bytes)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(bytes))), nil
	}
	return math.Float64frombits(b.order.Uint64(bytes)), nil
}
