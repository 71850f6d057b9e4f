package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/philipparndt/roofmeasure/pkg/geometry"
)

const (
	binaryHeaderSize = 80
	binaryFacetSize  = 50
)

// Parse reads an STL file and returns a Model.
// It automatically detects whether the file is ASCII or binary format.
func Parse(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	return Decode(data)
}

// Decode parses STL data held in memory.
// Binary files whose header happens to start with "solid" are recognised by
// their exact size.
func Decode(data []byte) (*Model, error) {
	if isBinary(data) {
		return parseBinary(bytes.NewReader(data))
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCII(bytes.NewReader(data))
	}
	return parseBinary(bytes.NewReader(data))
}

func isBinary(data []byte) bool {
	if len(data) < binaryHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[binaryHeaderSize : binaryHeaderSize+4])
	return uint64(len(data)) == uint64(binaryHeaderSize+4)+uint64(count)*binaryFacetSize
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var normal geometry.Vector3
	var vertices []geometry.Vector3
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				v, err := parseVector(fields[2:5])
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNo)
				}
				normal = v
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVector(fields[1:4])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) == 3 {
				model.AddTriangle(geometry.NewTriangle(normal, vertices[0], vertices[1], vertices[2]))
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading ASCII STL")
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, errors.Wrapf(err, "invalid coordinate %q", f)
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

// binaryFacet mirrors the on-disk layout of one binary STL facet
type binaryFacet struct {
	Normal    [3]float32
	V1        [3]float32
	V2        [3]float32
	V3        [3]float32
	Attribute uint16
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	model := NewModel("")

	header := make([]byte, binaryHeaderSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	model.Name = strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, errors.Wrap(err, "failed to read triangle count")
	}

	for i := uint32(0); i < triangleCount; i++ {
		var facet binaryFacet
		if err := binary.Read(reader, binary.LittleEndian, &facet); err != nil {
			return nil, errors.Wrapf(err, "failed to read triangle %d", i)
		}
		model.AddTriangle(geometry.NewTriangle(
			toVector(facet.Normal),
			toVector(facet.V1),
			toVector(facet.V2),
			toVector(facet.V3),
		))
	}

	return model, nil
}

func toVector(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}
