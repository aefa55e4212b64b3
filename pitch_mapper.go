// pitch_mapper.go - Key code to frequency lattice

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import "math"

// MAX_KEY_CODES bounds the key codes that can sound. Codes at or above it are
// dropped before they reach the event bridge.
const MAX_KEY_CODES = 64

const (
	LATTICE_BASE_FREQ  = 100.0   // Hz at row 0, column 0
	LATTICE_ROW_RATIO  = 1.5     // Perfect fifth per row
	LATTICE_COL_RATIO  = 4.0 / 3 // Perfect fourth per column
	LATTICE_ROW_WIDTH  = 13      // Key codes per keyboard row
	LATTICE_ROW_ORIGIN = 53      // Last code of the bottom letter row
	LATTICE_COL_ORIGIN = 5       // Code anchoring column 0
)

// PitchTable holds the frequency in Hz of every key code. It is filled once by
// NewPitchTable and only read afterwards.
type PitchTable [MAX_KEY_CODES]float32

func NewPitchTable() *PitchTable {
	var table PitchTable
	for code := range table {
		table[code] = keyCodeToFrequency(code)
	}
	return &table
}

// Frequency returns the pitch of code, or 0 when code is out of range.
func (pt *PitchTable) Frequency(code int) float32 {
	if code < 0 || code >= MAX_KEY_CODES {
		return 0
	}
	return pt[code]
}

// keyLattice places a key code on the isomorphic layout. Both operations
// truncate toward zero, so codes past the row origin stay on row 0 instead of
// wrapping to row -1.
func keyLattice(code int) (row, column int) {
	row = (LATTICE_ROW_ORIGIN - code) / LATTICE_ROW_WIDTH
	column = (code-LATTICE_COL_ORIGIN+row)%LATTICE_ROW_WIDTH - row
	return row, column
}

func keyCodeToFrequency(code int) float32 {
	row, column := keyLattice(code)
	freq := LATTICE_BASE_FREQ *
		math.Pow(LATTICE_ROW_RATIO, float64(row)) *
		math.Pow(LATTICE_COL_RATIO, float64(column))
	return float32(freq)
}
