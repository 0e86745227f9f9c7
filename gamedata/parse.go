package gamedata

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	mapConstPattern   = regexp.MustCompile(`^\s*map_const\s+(\w+),\s*(\d+),\s*(\d+)\s*(?:;\s*\$([0-9A-Fa-f]+))?`)
	mapHeaderPattern  = regexp.MustCompile(`^\s*map_header\s+(\w+),\s+(\w+),\s+(\w+),`)
	connectionPattern = regexp.MustCompile(`^\s*connection\s+(\w+),\s+(\w+),\s+(\w+),\s+(-?\d+)`)
	constDefPattern   = regexp.MustCompile(`^\s*const_def(?:\s+(\d+))?`)
	constPattern      = regexp.MustCompile(`^\s*const\s+(\w+)`)
)

type mapConst struct {
	Name   string
	ID     int
	Width  int
	Height int
}

// parseMapConstants reads map_const lines: name, width and height in
// blocks, and an optional hex id comment. Lines without the comment
// take their position in the file as the id.
func parseMapConstants(r io.Reader) ([]mapConst, error) {
	var out []mapConst

	s := bufio.NewScanner(r)
	for s.Scan() {
		m := mapConstPattern.FindStringSubmatch(s.Text())
		if m == nil {
			continue
		}

		width, _ := strconv.Atoi(m[2])
		height, _ := strconv.Atoi(m[3])

		id := len(out)
		if m[4] != "" {
			v, _ := strconv.ParseInt(m[4], 16, 32)
			id = int(v)
		}

		out = append(out, mapConst{Name: m[1], ID: id, Width: width, Height: height})
	}

	return out, s.Err()
}

type tilesetConst struct {
	Name string
	ID   int
}

// parseTilesetConstants reads a const_def block, numbering each const
// line sequentially from the const_def starting value.
func parseTilesetConstants(r io.Reader) ([]tilesetConst, error) {
	var out []tilesetConst
	next := 0

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()

		if m := constDefPattern.FindStringSubmatch(line); m != nil {
			next = 0
			if m[1] != "" {
				next, _ = strconv.Atoi(m[1])
			}
			continue
		}
		if m := constPattern.FindStringSubmatch(line); m != nil {
			out = append(out, tilesetConst{Name: m[1], ID: next})
			next++
		}
	}

	return out, s.Err()
}

type header struct {
	Label    string
	MapConst string
	Tileset  string
}

type rawConnection struct {
	Direction string
	ToLabel   string
	ToConst   string
	Offset    int
}

// parseHeader reads one map header file: the map_header directive
// binding a label to its map and tileset constants, followed by any
// connection directives. A file without a map_header yields nil.
func parseHeader(r io.Reader) (*header, []rawConnection, error) {
	var h *header
	var conns []rawConnection

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()

		if m := mapHeaderPattern.FindStringSubmatch(line); m != nil {
			h = &header{Label: m[1], MapConst: m[2], Tileset: m[3]}
			continue
		}
		if m := connectionPattern.FindStringSubmatch(line); m != nil && h != nil {
			off, _ := strconv.Atoi(m[4])
			conns = append(conns, rawConnection{
				Direction: strings.ToLower(m[1]),
				ToLabel:   m[2],
				ToConst:   m[3],
				Offset:    off,
			})
		}
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}

	return h, conns, nil
}
