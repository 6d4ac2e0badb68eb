package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/inference-sim/abr-sim/sim"
)

// EventRow is the Parquet schema of one stream event. Chunk columns are
// null for rebuffer rows.
type EventRow struct {
	RunID         string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Policy        string `parquet:"name=policy, type=BYTE_ARRAY, convertedtype=UTF8"`
	TimeMs        int64  `parquet:"name=time_ms, type=INT64"`
	Status        string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	ChunkID       *int32 `parquet:"name=chunk_id, type=INT32, repetitiontype=OPTIONAL"`
	BitrateKbps   *int32 `parquet:"name=bitrate_kbps, type=INT32, repetitiontype=OPTIONAL"`
	SizeKB        *int32 `parquet:"name=size_kb, type=INT32, repetitiontype=OPTIONAL"`
	BufferLevelMs int64  `parquet:"name=buffer_level_ms, type=INT64"`
	BandwidthKbps int32  `parquet:"name=bandwidth_kbps, type=INT32"`
}

// NewEventRow converts a stream event into a Parquet row.
func NewEventRow(runID, policy string, ev sim.StreamEvent) EventRow {
	row := EventRow{
		RunID:         runID,
		Policy:        policy,
		TimeMs:        ev.TimeMs,
		Status:        string(ev.Status),
		BufferLevelMs: ev.BufferLevelMs,
		BandwidthKbps: int32(ev.BandwidthKbps),
	}
	if ev.HasChunk {
		id, bitrate, size := int32(ev.ChunkID), int32(ev.BitrateKbps), int32(ev.SizeKB)
		row.ChunkID, row.BitrateKbps, row.SizeKB = &id, &bitrate, &size
	}
	return row
}

// ParquetEventWriter batches stream events into a Parquet file. It is an
// EventSink; since Emit cannot fail, the first write error is kept and
// returned by Close.
type ParquetEventWriter struct {
	writer    *writer.ParquetWriter
	file      source.ParquetFile
	mutex     sync.Mutex
	filePath  string
	batchSize int
	rows      []EventRow
	err       error

	runID  string
	policy string
}

// NewParquetEventWriter creates the file at path, creating parent directories.
func NewParquetEventWriter(path string, batchSize int) (*ParquetEventWriter, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}

	pw, err := writer.NewParquetWriter(file, new(EventRow), 4)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	return &ParquetEventWriter{
		writer:    pw,
		file:      file,
		filePath:  path,
		batchSize: batchSize,
		rows:      make([]EventRow, 0, batchSize),
	}, nil
}

// SetRun labels subsequent rows with a run id and policy name, so one file
// can hold several back-to-back runs.
func (pw *ParquetEventWriter) SetRun(runID, policy string) {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()
	pw.runID, pw.policy = runID, policy
}

// Emit adds an event to the batch and flushes if the batch is full.
func (pw *ParquetEventWriter) Emit(ev sim.StreamEvent) {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if pw.err != nil {
		return
	}
	pw.rows = append(pw.rows, NewEventRow(pw.runID, pw.policy, ev))
	if len(pw.rows) >= pw.batchSize {
		pw.err = pw.flush()
	}
}

// flush writes the current batch to the Parquet file
func (pw *ParquetEventWriter) flush() error {
	for _, row := range pw.rows {
		if err := pw.writer.Write(row); err != nil {
			return fmt.Errorf("failed to write event row: %w", err)
		}
	}
	pw.rows = pw.rows[:0]
	return nil
}

// Close flushes any remaining rows and closes the file. Returns the first
// error seen by Emit, if any.
func (pw *ParquetEventWriter) Close() error {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if pw.err == nil {
		pw.err = pw.flush()
	}
	if err := pw.writer.WriteStop(); err != nil && pw.err == nil {
		pw.err = fmt.Errorf("failed to stop parquet writer: %w", err)
	}
	if err := pw.file.Close(); err != nil && pw.err == nil {
		pw.err = fmt.Errorf("failed to close parquet file: %w", err)
	}
	return pw.err
}

// FilePath returns the path of the written file.
func (pw *ParquetEventWriter) FilePath() string {
	return pw.filePath
}
