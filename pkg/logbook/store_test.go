package logbook_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/logbook-io/logbook/pkg/logbook"
)

var _ = Describe("FileStore", func() {
	var (
		storePath string
		store     *logbook.FileStore
	)

	BeforeEach(func() {
		storePath = filepath.Join(GinkgoT().TempDir(), "logbook.csv")

		var err error
		store, err = logbook.OpenFileStore(storePath, newTestMetrics())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = store.Close()
	})

	Describe("OpenFileStore", func() {
		It("should create the file with a header line", func() {
			data, err := os.ReadFile(storePath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(logbook.Header + "\n"))
		})

		It("should not rewrite the header on reopen", func() {
			Expect(store.Close()).To(Succeed())

			reopened, err := logbook.OpenFileStore(storePath, newTestMetrics())
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = reopened.Close() }()

			data, err := os.ReadFile(storePath)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(data), logbook.Header)).To(Equal(1))
		})

		It("should fail when the path is not writable", func() {
			_, err := logbook.OpenFileStore(
				filepath.Join(GinkgoT().TempDir(), "missing", "logbook.csv"), newTestMetrics())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Append and ReadAll", func() {
		It("should round-trip all six fields", func() {
			entry := logbook.LogEntry{
				Agent:    "curl/8.0",
				Time:     "2024-01-01T00:00:00.000Z",
				Method:   "GET",
				Resource: "/",
				Version:  "HTTP/1.1",
				Status:   200,
			}

			Expect(store.Append(entry)).To(Succeed())

			entries, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0]).To(Equal(entry))
		})

		It("should return N entries in append order after N appends", func() {
			for i := 0; i < 10; i++ {
				entry := logbook.LogEntry{
					Method:   "GET",
					Resource: fmt.Sprintf("/item/%d", i),
					Status:   200,
				}
				Expect(store.Append(entry)).To(Succeed())
			}

			entries, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(10))
			for i, entry := range entries {
				Expect(entry.Resource).To(Equal(fmt.Sprintf("/item/%d", i)))
			}
		})

		It("should return an empty slice for a header-only file", func() {
			entries, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("should preserve existing entries across reopen", func() {
			Expect(store.Append(logbook.LogEntry{Resource: "/first", Status: 200})).To(Succeed())
			Expect(store.Close()).To(Succeed())

			reopened, err := logbook.OpenFileStore(storePath, newTestMetrics())
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = reopened.Close() }()

			Expect(reopened.Append(logbook.LogEntry{Resource: "/second", Status: 200})).To(Succeed())

			entries, err := reopened.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Resource).To(Equal("/first"))
			Expect(entries[1].Resource).To(Equal("/second"))
		})

		It("should tolerate a short line written by an outside writer", func() {
			file, err := os.OpenFile(storePath, os.O_WRONLY|os.O_APPEND, 0o644)
			Expect(err).NotTo(HaveOccurred())
			_, err = file.WriteString("truncated,line\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(file.Close()).To(Succeed())

			entries, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Agent).To(Equal("truncated"))
			Expect(entries[0].Time).To(Equal("line"))
			Expect(entries[0].Method).To(BeEmpty())
			Expect(entries[0].Status).To(BeZero())
		})

		It("should propagate a read error when the file is missing", func() {
			Expect(os.Remove(storePath)).To(Succeed())

			_, err := store.ReadAll()
			Expect(err).To(HaveOccurred())
		})
	})
})
