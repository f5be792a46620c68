package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stattrack/models"
	"stattrack/pkg/ocr"
)

// Global DB handle for helper funcs
var db *gorm.DB

var (
	verbose bool
	dryRun  bool
)

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: scans a directory of box-score screenshots, creates a DRAFT game per
// image, extracts stat lines and writes participants. Optional watch mode.
func main() {
	dirFlag := flag.String("dir", "data/inbox", "directory to scan for box-score images")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	preset := flag.String("preset", "screenshot", "Crop preset: screenshot or receipt")
	binary := flag.String("tesseract", "", "Tesseract binary path (default resolved from PATH)")
	timeout := flag.Int("timeout", 30, "OCR timeout in seconds (0 = none)")
	write := flag.Bool("write", true, "Write participant rows (false = report only)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.BoolVar(&dryRun, "dry-run", false, "Skip all DB writes; run extraction and report what would be written")
	flag.Parse()

	db = mustInitDBFromEnv()
	roster := mustLoadRoster()
	log.Printf("Preloaded: roster=%d players", roster.Len())

	cfg := ocr.DefaultConfig()
	if *preset == "receipt" {
		cfg.Crop = ocr.ReceiptCrop
	}
	engine := ocr.TesseractCLI{Binary: *binary, Timeout: time.Duration(*timeout) * time.Second}
	ex := ocr.NewExtractor(engine, cfg)

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, ex, roster, *write, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, ex, roster, *write, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func mustLoadRoster() *ocr.Roster {
	var players []models.Player
	if err := db.Order("id").Find(&players).Error; err != nil {
		log.Fatalf("failed to load players: %v", err)
	}
	roster := ocr.NewRoster()
	for _, p := range players {
		roster.Add(p.ID, p.Gamertag)
	}
	return roster
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, ex *ocr.Extractor, roster *ocr.Roster, write bool, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(dir, ex, roster, write, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}

// worker pool orchestrator
func runWorkerPool(dir string, ex *ocr.Extractor, roster *ocr.Roster, write bool, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, ex, roster, write)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile creates a DRAFT game for one screenshot and extracts its
// stat lines. The processed image is moved out of the inbox afterwards so
// rescans do not ingest it twice.
func processSingleFile(dir, name string, ex *ocr.Extractor, roster *ocr.Roster, write bool) {
	filePath := filepath.Join(dir, name)

	if dryRun {
		res, err := ex.Run(filePath, roster, nil)
		if err != nil {
			log.Printf("ERROR extract %s: %v", name, err)
			return
		}
		log.Printf("DRY %s matched=%d failed=%d", name, res.Matched, res.Failed)
		return
	}

	game := models.Game{PlayedAt: time.Now().Format("2006-01-02"), Status: models.GameDraft, ImagePath: filePath}
	if err := db.Create(&game).Error; err != nil {
		log.Printf("ERROR create game for %s: %v", name, err)
		return
	}

	var writeFn ocr.WriteFunc
	if write {
		gameID := game.ID
		writeFn = func(line ocr.StatLine) error { return upsertParticipant(gameID, line) }
	}
	res, err := ex.Run(filePath, roster, writeFn)
	if err != nil {
		log.Printf("ERROR extract %s (game=%d): %v", name, game.ID, err)
		return
	}
	log.Printf("GAME id=%d file=%s matched=%d written=%d failed=%d", game.ID, name, res.Matched, res.Written, res.Failed)

	if err := moveToProcessed(filePath, name); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	} else {
		logV("moved processed %s", name)
	}
}

func upsertParticipant(gameID uint, line ocr.StatLine) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ? AND player_id = ?", gameID, line.PlayerID).
			Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Participant{
			GameID:   gameID,
			PlayerID: line.PlayerID,
			Team:     string(line.Team),
			Pts:      line.Pts, Reb: line.Reb, Ast: line.Ast, Stl: line.Stl,
			Blk: line.Blk, Fouls: line.Fouls, Turnovers: line.Turnovers,
			Fgm: line.FG.Made, Fga: line.FG.Attempted,
			Tpm: line.ThreePt.Made, Tpa: line.ThreePt.Attempted,
			Ftm: line.FT.Made, Fta: line.FT.Attempted,
		}).Error
	})
}

// moveToProcessed moves a file into <dir>/processed/<name>. It attempts an
// atomic rename and falls back to copy+remove when necessary.
func moveToProcessed(srcFullPath, name string) error {
	processedDir := filepath.Join(filepath.Dir(srcFullPath), "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(processedDir, name)
	// try rename
	if err := os.Rename(srcFullPath, dst); err == nil {
		return nil
	}
	// fallback: copy then remove
	in, err := os.Open(srcFullPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	return os.Remove(srcFullPath)
}
