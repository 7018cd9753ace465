package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Simple load generator for the messaging API. It registers pairs of
// throwaway accounts, then has each pair exchange messages and read
// threads concurrently while latency is sampled per request.

var (
	baseURL     = flag.String("url", "http://127.0.0.1:8080", "server base url")
	pairs       = flag.Int("pairs", 10, "number of sender/receiver account pairs")
	perPair     = flag.Int("n", 100, "messages each pair exchanges")
	readEvery   = flag.Int("read-every", 10, "fetch the thread after this many sends (0 disables)")
	timeout     = flag.Duration("timeout", 10*time.Second, "per request timeout")
	runID       = rand.Int63()
	client      *http.Client
	sendLat     latencies
	threadLat   latencies
	errCount    int64
	sanitized   int64
)

type latencies struct {
	mu      sync.Mutex
	samples []time.Duration
}

func (l *latencies) add(d time.Duration) {
	l.mu.Lock()
	l.samples = append(l.samples, d)
	l.mu.Unlock()
}

func (l *latencies) report(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		fmt.Printf("%-8s no samples\n", name)
		return
	}
	sort.Slice(l.samples, func(i, j int) bool { return l.samples[i] < l.samples[j] })
	var total time.Duration
	for _, d := range l.samples {
		total += d
	}
	pct := func(p float64) time.Duration {
		idx := int(p * float64(len(l.samples)-1))
		return l.samples[idx]
	}
	fmt.Printf("%-8s count=%-6d avg=%-10s p50=%-10s p95=%-10s p99=%-10s max=%s\n",
		name, len(l.samples), total/time.Duration(len(l.samples)),
		pct(0.50), pct(0.95), pct(0.99), l.samples[len(l.samples)-1])
}

type account struct {
	id    uint
	token string
}

func postJSON(path, token string, body interface{}, out interface{}) (int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func getJSON(path, token string, out interface{}) (int, error) {
	req, err := http.NewRequest(http.MethodGet, *baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func register(i int, role string) (account, error) {
	email := fmt.Sprintf("bench-%d-%s-%d@example.com", runID, role, i)
	body := map[string]string{
		"name":     fmt.Sprintf("bench %s %d", role, i),
		"email":    email,
		"password": "benchpass123",
		"role":     role,
	}
	var reg struct {
		Success bool `json:"success"`
		User    struct {
			ID uint `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	status, err := postJSON("/api/auth/register", "", body, &reg)
	if err != nil {
		return account{}, err
	}
	if status != http.StatusCreated || !reg.Success {
		return account{}, fmt.Errorf("register %s: status %d", email, status)
	}
	return account{id: reg.User.ID, token: reg.Token}, nil
}

func runPair(i int, wg *sync.WaitGroup) {
	defer wg.Done()

	sender, err := register(i, "user")
	if err != nil {
		fmt.Fprintf(os.Stderr, "pair %d: %v\n", i, err)
		atomic.AddInt64(&errCount, 1)
		return
	}
	receiver, err := register(i, "artist")
	if err != nil {
		fmt.Fprintf(os.Stderr, "pair %d: %v\n", i, err)
		atomic.AddInt64(&errCount, 1)
		return
	}

	for n := 0; n < *perPair; n++ {
		content := fmt.Sprintf("hello message %d, does next week work for the piece?", n)
		if n%7 == 0 {
			// exercise the sanitizer path now and then
			content = fmt.Sprintf("call me on 98%08d", n)
		}
		var sent struct {
			Success      bool `json:"success"`
			WasSanitized bool `json:"was_sanitized"`
		}
		start := time.Now()
		status, err := postJSON("/api/messages", sender.token, map[string]interface{}{
			"receiver_id": receiver.id,
			"content":     content,
		}, &sent)
		sendLat.add(time.Since(start))
		if err != nil || status != http.StatusCreated {
			atomic.AddInt64(&errCount, 1)
			continue
		}
		if sent.WasSanitized {
			atomic.AddInt64(&sanitized, 1)
		}

		if *readEvery > 0 && n%*readEvery == 0 {
			start = time.Now()
			status, err = getJSON(fmt.Sprintf("/api/messages/%d", sender.id), receiver.token, nil)
			threadLat.add(time.Since(start))
			if err != nil || status != http.StatusOK {
				atomic.AddInt64(&errCount, 1)
			}
		}
	}
}

func main() {
	flag.Parse()
	client = &http.Client{Timeout: *timeout}

	fmt.Printf("target=%s pairs=%d messages/pair=%d\n\n", *baseURL, *pairs, *perPair)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go runPair(i, &wg)
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := *pairs * *perPair
	fmt.Printf("\nelapsed=%s total_sends=%d throughput=%.1f msg/s sanitized=%d errors=%d\n\n",
		elapsed.Round(time.Millisecond), total,
		float64(total)/elapsed.Seconds(), atomic.LoadInt64(&sanitized), atomic.LoadInt64(&errCount))
	sendLat.report("send")
	threadLat.report("thread")
}
