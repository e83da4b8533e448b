package shell

import (
	"fmt"
	"strconv"
	"strings"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %s", s)
	}
	return common.HexToAddress(s), nil
}

func parseLotteryID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid lottery id: %s", s)
	}
	return id, nil
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	return v, nil
}

func parseLimit(args []string, i, defaultLimit int) (int, error) {
	if len(args) <= i {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(args[i])
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit: %s", args[i])
	}
	return limit, nil
}

func parseEntropyMode(s string) (entities.EntropyMode, error) {
	switch strings.ToLower(s) {
	case "commit-reveal", "commit_reveal", "cr":
		return entities.EntropyCommitReveal, nil
	case "block-hash", "block_hash", "bh":
		return entities.EntropyBlockHash, nil
	}
	return "", fmt.Errorf("unknown entropy mode: %s (use commit-reveal or block-hash)", s)
}

// formatNumber formats a number with thousands separators
func formatNumber(n uint64) string {
	str := strconv.FormatUint(n, 10)
	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

func formatSignedNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(uint64(-n))
	}
	return "+" + formatNumber(uint64(n))
}

func shortAddress(a common.Address) string {
	hex := a.Hex()
	return hex[:6] + ".." + hex[len(hex)-4:]
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// formatTable formats data as a simple ASCII table
func formatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 || len(rows) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	separator := "+"
	for _, width := range colWidths {
		separator += strings.Repeat("-", width+2) + "+"
	}

	var result strings.Builder
	result.WriteString(separator + "\n|")
	for i, header := range headers {
		result.WriteString(" " + padRight(header, colWidths[i]) + " |")
	}
	result.WriteString("\n" + separator + "\n")

	for _, row := range rows {
		result.WriteString("|")
		for i, cell := range row {
			if i < len(colWidths) {
				result.WriteString(" " + padRight(cell, colWidths[i]) + " |")
			}
		}
		result.WriteString("\n")
	}
	result.WriteString(separator)

	return result.String()
}
