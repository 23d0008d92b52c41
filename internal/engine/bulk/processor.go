package bulk

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"qrgen/internal/engine/qrcodes"
	"qrgen/internal/engine/render"
)

// Processor turns an uploaded CSV into persisted records plus a zip archive
// of rendered PNGs. Rows are handled in file order; records created before a
// failing row stay in the datastore.
type Processor struct {
	jobs      *Repository
	codes     *qrcodes.Service
	resultDir string
	maxRows   int
}

func NewProcessor(jobs *Repository, codes *qrcodes.Service, resultDir string, maxRows int) *Processor {
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &Processor{
		jobs:      jobs,
		codes:     codes,
		resultDir: resultDir,
		maxRows:   maxRows,
	}
}

// Process runs a claimed job to its terminal status. The returned error is
// for the caller's log only; the job row always ends up completed or failed.
func (p *Processor) Process(job *Job) error {
	resultPath, err := p.run(job)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("bulk job failed")
		if markErr := p.jobs.MarkFailed(job.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	return p.jobs.MarkCompleted(job.ID, resultPath)
}

func (p *Processor) run(job *Job) (string, error) {
	f, err := os.Open(job.FilePath)
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", fmt.Errorf("read csv header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	if _, ok := colIndex["name"]; !ok {
		return "", fmt.Errorf("csv missing required column %q", "name")
	}
	if _, ok := colIndex["data"]; !ok {
		return "", fmt.Errorf("csv missing required column %q", "data")
	}

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	usedNames := make(map[string]int)

	rowNum := 1
	processed := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv row %d: %w", rowNum+1, err)
		}
		rowNum++

		field := func(name string) string {
			i, ok := colIndex[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		data := field("data")
		if data == "" {
			continue
		}

		if processed >= p.maxRows {
			return "", fmt.Errorf("csv exceeds row limit of %d", p.maxRows)
		}

		size := 0
		if raw := field("size"); raw != "" {
			size, err = strconv.Atoi(raw)
			if err != nil {
				return "", fmt.Errorf("row %d: invalid size %q", rowNum, raw)
			}
		}

		req := &qrcodes.QRCode{
			UserID:          job.UserID,
			Name:            field("name"),
			Kind:            qrcodes.KindStatic,
			Data:            data,
			FillColor:       field("fill_color"),
			BackColor:       field("back_color"),
			ErrorCorrection: strings.ToUpper(field("error_correction")),
			Size:            size,
		}
		qr, err := p.codes.Create(req)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", rowNum, err)
		}

		img, err := render.Generate(qr.Data, render.Options{
			FillColor:       qr.FillColor,
			BackColor:       qr.BackColor,
			ErrorCorrection: qr.ErrorCorrection,
			Size:            qr.Size,
		})
		if err != nil {
			return "", fmt.Errorf("row %d: %w", rowNum, err)
		}
		pngBytes, err := render.EncodePNG(img)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", rowNum, err)
		}

		entry, err := zw.Create(entryName(usedNames, qr.Name))
		if err != nil {
			return "", err
		}
		if _, err := entry.Write(pngBytes); err != nil {
			return "", err
		}
		processed++
	}

	if err := zw.Close(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.resultDir, 0o755); err != nil {
		return "", err
	}
	resultPath := filepath.Join(p.resultDir, job.ID+".zip")
	if err := os.WriteFile(resultPath, archive.Bytes(), 0o644); err != nil {
		return "", err
	}

	log.Info().Str("job_id", job.ID).Int("codes", processed).Msg("bulk job completed")
	return resultPath, nil
}

// entryName deduplicates archive member names with a numeric suffix, so two
// rows named "promo" become promo.png and promo-2.png.
func entryName(used map[string]int, name string) string {
	base := sanitizeName(name)
	used[base]++
	if used[base] == 1 {
		return base + ".png"
	}
	return fmt.Sprintf("%s-%d.png", base, used[base])
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "qrcode"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(name)
}
