package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"territory-engine/internal/geo"
)

var nameColumns = []string{"name", "title", "location", "place"}

// 文档注释：从 CSV 读取地标
// 背景：供 catalog-import 工具使用；列名不区分大小写，必须包含 latitude 与 longitude，名称列取 name/title/location/place 中先出现者。
// 约束：分隔符在 , ; \t 中按首行出现次数推断；坐标无法解析或缺少名称的行被跳过并计入 skipped。
func ReadCSV(r io.Reader) (landmarks []geo.Landmark, skipped int, err error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, err
	}
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, err
	}
	latCol, lngCol, nameCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "latitude":
			latCol = i
		case "longitude":
			lngCol = i
		}
	}
	for _, want := range nameColumns {
		for i, h := range header {
			if nameCol == -1 && strings.ToLower(strings.TrimSpace(h)) == want {
				nameCol = i
			}
		}
	}
	if latCol == -1 || lngCol == -1 {
		return nil, 0, errors.New("csv must contain latitude and longitude columns")
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return landmarks, skipped, err
		}
		lm, ok := parseRow(rec, latCol, lngCol, nameCol)
		if !ok {
			skipped++
			continue
		}
		landmarks = append(landmarks, lm)
	}
	return landmarks, skipped, nil
}

func parseRow(rec []string, latCol, lngCol, nameCol int) (geo.Landmark, bool) {
	if latCol >= len(rec) || lngCol >= len(rec) || nameCol < 0 || nameCol >= len(rec) {
		return geo.Landmark{}, false
	}
	lat, e1 := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
	lng, e2 := strconv.ParseFloat(strings.TrimSpace(rec[lngCol]), 64)
	name := strings.TrimSpace(rec[nameCol])
	if e1 != nil || e2 != nil || name == "" {
		return geo.Landmark{}, false
	}
	return geo.Landmark{GeoPoint: geo.GeoPoint{Longitude: lng, Latitude: lat}, Name: name}, true
}

func sniffDelimiter(sample []byte) rune {
	line := string(sample)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', strings.Count(line, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
