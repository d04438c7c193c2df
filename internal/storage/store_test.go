package storage_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/metrics"
	"github.com/san-kum/soapsort/internal/soap"
	"github.com/san-kum/soapsort/internal/storage"
)

func sampleRun() (experiment.Config, *experiment.Result) {
	cfg := experiment.Config{
		Generator: "demo",
		Seed:      42,
		Sort:      soap.Config{Energy: 100, Beta: 1, Threshold: 1},
	}
	result := &experiment.Result{
		Input:  []float64{2, 1},
		Output: []float64{1, 2},
		Sort: &soap.Result{
			Interactions: 1,
			Swaps:        2,
			Steps:        5,
			Metrics:      map[string]float64{"swaps": 2},
		},
		History: []metrics.Sample{
			{Interaction: 0, Inversions: 1, Swaps: 0},
			{Interaction: 1, Inversions: 0, Swaps: 2},
		},
		Elapsed: 1500 * time.Microsecond,
	}
	return cfg, result
}

var _ = Describe("Store", func() {
	var (
		dir string
		st  *storage.Store
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "soapsort-store")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		st = storage.New(dir)
		Expect(st.Init()).To(Succeed())
	})

	Describe("Save and Load", func() {
		It("round trips metadata and history", func() {
			cfg, result := sampleRun()

			runID, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())
			Expect(runID).To(HavePrefix("demo_"))

			meta, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.Seed).To(Equal(int64(42)))
			Expect(meta.Energy).To(Equal(100.0))
			Expect(meta.Input).To(Equal([]float64{2, 1}))
			Expect(meta.Output).To(Equal([]float64{1, 2}))
			Expect(meta.Sorted).To(BeTrue())
			Expect(meta.Swaps).To(Equal(2))
			Expect(meta.ElapsedMs).To(BeNumerically("~", 1.5, 1e-9))
			Expect(meta.Metrics).To(HaveKeyWithValue("swaps", 2.0))

			history, err := st.LoadHistory(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(Equal(result.History))
		})

		It("marks a partial run as unsorted", func() {
			cfg, result := sampleRun()
			cfg.Sort.MaxInteractions = 1
			result.Output = []float64{2, 1}

			runID, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())

			meta, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.Sorted).To(BeFalse())
			Expect(meta.MaxInteractions).To(Equal(1))
		})

		It("creates the run files", func() {
			cfg, result := sampleRun()
			runID, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Join(dir, runID, "metadata.json")).To(BeAnExistingFile())
			Expect(filepath.Join(dir, runID, "history.csv")).To(BeAnExistingFile())
		})

		It("labels explicit values and resolves the default energy", func() {
			cfg, result := sampleRun()
			cfg.Values = []float64{2, 1}
			cfg.Sort.Energy = 0

			runID, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())
			Expect(runID).To(HavePrefix("values_"))

			meta, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.Energy).To(Equal(2.0))
		})

		It("fails to load an unknown run", func() {
			_, err := st.Load("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("is empty for a fresh store", func() {
			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		})

		It("is empty when the directory does not exist", func() {
			runs, err := storage.New(filepath.Join(dir, "nowhere")).List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		})

		It("returns saved runs oldest first and skips stray entries", func() {
			cfg, result := sampleRun()
			first, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())
			second, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())

			Expect(os.Mkdir(filepath.Join(dir, "junk"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)).To(Succeed())

			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal(first))
			Expect(runs[1].ID).To(Equal(second))
		})
	})

	Describe("export", func() {
		It("writes metadata and history as one JSON document", func() {
			cfg, result := sampleRun()
			runID, err := st.Save(cfg, result)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(st.WriteJSON(runID, &buf)).To(Succeed())

			var data storage.ExportData
			Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
			Expect(data.ID).To(Equal(runID))
			Expect(data.History).To(HaveLen(2))

			path := filepath.Join(dir, "out.json")
			Expect(st.ExportJSON(runID, path)).To(Succeed())
			Expect(path).To(BeAnExistingFile())
		})

		It("renders the history as an SVG path", func() {
			_, result := sampleRun()
			svg := storage.HistoryToSVG(result.History, 200, 100, "#00ff88")

			Expect(svg).To(HavePrefix("<?xml"))
			Expect(svg).To(ContainSubstring(`stroke="#00ff88"`))
			Expect(strings.Count(svg, " L")).To(Equal(1))
			Expect(storage.HistoryToSVG(result.History[:1], 200, 100, "#fff")).To(BeEmpty())
		})
	})
})
