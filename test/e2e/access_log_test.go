package e2e_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/logbook-io/logbook/pkg/logbook"
)

func entryCount() int {
	entries, err := testStore.ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return len(entries)
}

func doGet(path, userAgent string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	Expect(err).NotTo(HaveOccurred())
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, string(body)
}

var _ = Describe("Access logging end to end", func() {
	It("should serve the health check and log it", func() {
		before := entryCount()

		resp, body := doGet("/", "e2e-health/1.0")
		Expect(resp.StatusCode).To(Equal(200))
		Expect(body).To(Equal("ok"))

		Eventually(entryCount).Should(BeNumerically(">", before))
		Eventually(func() ([]logbook.LogEntry, error) {
			return testStore.ReadAll()
		}).Should(ContainElement(SatisfyAll(
			HaveField("Agent", "e2e-health/1.0"),
			HaveField("Method", "GET"),
			HaveField("Resource", "/"),
			HaveField("Version", "HTTP/1.1"),
			HaveField("Status", 200),
		)))
	})

	It("should return the stored entries from /logs and log the retrieval itself", func() {
		doGet("/", "e2e-logs/1.0")
		Eventually(func() ([]logbook.LogEntry, error) {
			return testStore.ReadAll()
		}).Should(ContainElement(HaveField("Agent", "e2e-logs/1.0")))

		resp, body := doGet("/logs", "e2e-reader/1.0")
		Expect(resp.StatusCode).To(Equal(200))
		Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

		var entries []logbook.LogEntry
		Expect(json.Unmarshal([]byte(body), &entries)).To(Succeed())
		Expect(entries).To(ContainElement(HaveField("Agent", "e2e-logs/1.0")))

		// The /logs request is itself logged once its response completes.
		Eventually(func() ([]logbook.LogEntry, error) {
			return testStore.ReadAll()
		}).Should(ContainElement(SatisfyAll(
			HaveField("Agent", "e2e-reader/1.0"),
			HaveField("Resource", "/logs"),
			HaveField("Status", 200),
		)))
	})

	It("should log requests to unknown routes with their failure status", func() {
		resp, _ := doGet("/no-such-route", "e2e-missing/1.0")
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

		Eventually(func() ([]logbook.LogEntry, error) {
			return testStore.ReadAll()
		}).Should(ContainElement(SatisfyAll(
			HaveField("Agent", "e2e-missing/1.0"),
			HaveField("Resource", "/no-such-route"),
			HaveField("Status", http.StatusNotFound),
		)))
	})

	It("should store comma-stripped agents that survive the JSON round trip", func() {
		resp, _ := doGet("/", "Mozilla,5.0 (e2e)")
		Expect(resp.StatusCode).To(Equal(200))

		Eventually(func() ([]logbook.LogEntry, error) {
			return testStore.ReadAll()
		}).Should(ContainElement(HaveField("Agent", "Mozilla5.0 (e2e)")))

		_, body := doGet("/logs", "")
		var entries []logbook.LogEntry
		Expect(json.Unmarshal([]byte(body), &entries)).To(Succeed())
		Expect(entries).To(ContainElement(HaveField("Agent", "Mozilla5.0 (e2e)")))
	})

	It("should record parseable completion timestamps", func() {
		doGet("/", "e2e-time/1.0")

		var recorded logbook.LogEntry
		Eventually(func() bool {
			entries, err := testStore.ReadAll()
			if err != nil {
				return false
			}
			for _, entry := range entries {
				if entry.Agent == "e2e-time/1.0" {
					recorded = entry
					return true
				}
			}
			return false
		}).Should(BeTrue())

		stamp, err := time.Parse(logbook.TimeFormat, recorded.Time)
		Expect(err).NotTo(HaveOccurred())
		Expect(stamp).To(BeTemporally("~", time.Now().UTC(), time.Minute))
	})

	It("should produce exactly one well-formed line per concurrent request", func() {
		const nRequests = 50

		before := entryCount()

		var wg sync.WaitGroup
		for i := 0; i < nRequests; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, _ := doGet(fmt.Sprintf("/?burst=%d", i), "e2e-burst/1.0")
				Expect(resp.StatusCode).To(Equal(200))
			}()
		}
		wg.Wait()

		Eventually(entryCount).Should(BeNumerically(">=", before+nRequests))

		entries, err := testStore.ReadAll()
		Expect(err).NotTo(HaveOccurred())
		burst := 0
		for _, entry := range entries {
			if entry.Agent != "e2e-burst/1.0" {
				continue
			}
			burst++
			Expect(entry.Status).To(Equal(200))
		}
		Expect(burst).To(Equal(nRequests))

		// No line in the record file is truncated or merged with another.
		data, err := os.ReadFile(testStore.Path())
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		for _, line := range lines[1:] {
			Expect(strings.Split(line, logbook.FieldDelimiter)).To(HaveLen(logbook.NumFields))
		}
	})
})
