package main

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/BackendStack21/round5-go/kem"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

// benchmarkOps is the order operations are measured and reported in.
var benchmarkOps = []string{
	"keygen",
	"encapsulate",
	"decapsulate",
	"decapsulate_rejected",
	"encrypt",
	"decrypt",
}

// benchRecorder times operations into a latency histogram.
type benchRecorder struct {
	params   string
	latency  *prometheus.HistogramVec
	registry *prometheus.Registry
}

func newBenchRecorder(params string) *benchRecorder {
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "round5",
		Subsystem: "cli",
		Name:      "operation_duration_seconds",
		Help:      "Latency of KEM operations.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 2, 18),
	}, []string{"params", "operation"})
	registry := prometheus.NewRegistry()
	registry.MustRegister(latency)

	return &benchRecorder{
		params:   params,
		latency:  latency,
		registry: registry,
	}
}

func (r *benchRecorder) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if err != nil {
		return errors.Wrap(err, op)
	}
	r.latency.WithLabelValues(r.params, op).Observe(elapsed.Seconds())
	return nil
}

func (r *benchRecorder) gather() ([]*dto.MetricFamily, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "gathering metrics")
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	return families, nil
}

// averages returns the mean latency per operation label.
func averages(families []*dto.MetricFamily) map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.GetMetric() {
			h := m.GetHistogram()
			if h.GetSampleCount() == 0 {
				continue
			}
			for _, label := range m.GetLabel() {
				if label.GetName() == "operation" {
					mean := h.GetSampleSum() / float64(h.GetSampleCount())
					out[label.GetValue()] = time.Duration(mean * float64(time.Second))
				}
			}
		}
	}
	return out
}

// writeMetrics renders families in the Prometheus text format.
func writeMetrics(c *cli.Context, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(c.App.Writer, mf); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}

func benchmarkAction(c *cli.Context) error {
	k, err := loadKEM(c)
	if err != nil {
		return err
	}
	iterations := c.Int("iterations")
	if iterations < 1 {
		iterations = 1
	}

	rec := newBenchRecorder(k.Params().Name)
	if err := runBenchmark(k, iterations, rec); err != nil {
		return err
	}

	families, err := rec.gather()
	if err != nil {
		return err
	}
	avg := averages(families)

	w := c.App.Writer
	fmt.Fprintf(w, "Round5 Benchmark Results\n")
	fmt.Fprintf(w, "========================\n")
	fmt.Fprintf(w, "Parameter Set: %s\n", k.Params().Name)
	fmt.Fprintf(w, "Iterations: %d\n\n", iterations)
	for _, op := range benchmarkOps {
		fmt.Fprintf(w, "  %-22s %v (avg)\n", op+":", avg[op])
	}

	if c.Bool("metrics") {
		fmt.Fprintln(w)
		return writeMetrics(c, families)
	}
	return nil
}

func runBenchmark(k *kem.KEM, iterations int, rec *benchRecorder) error {
	message := bytes.Repeat([]byte("Hello, Round5!"), 16)

	for i := 0; i < iterations; i++ {
		var pk, sk, ct, tampered []byte
		if err := rec.observe("keygen", func() error {
			kp, err := k.GenerateKeyPair()
			if err != nil {
				return err
			}
			pk, sk = kp.PublicKey, kp.SecretKey
			return nil
		}); err != nil {
			return err
		}

		if err := rec.observe("encapsulate", func() error {
			res, err := k.Encapsulate(pk)
			if err != nil {
				return err
			}
			ct = res.Ciphertext
			return nil
		}); err != nil {
			return err
		}

		if err := rec.observe("decapsulate", func() error {
			_, err := k.Decapsulate(sk, ct)
			return err
		}); err != nil {
			return err
		}

		// Rejected ciphertexts must cost the same as valid ones.
		tampered = append([]byte(nil), ct...)
		tampered[0] ^= 1
		if err := rec.observe("decapsulate_rejected", func() error {
			_, err := k.Decapsulate(sk, tampered)
			return err
		}); err != nil {
			return err
		}

		var encrypted []byte
		if err := rec.observe("encrypt", func() error {
			em, err := k.Encrypt(pk, message)
			if err != nil {
				return err
			}
			encrypted = kem.SerializeEncryptedMessage(em)
			return nil
		}); err != nil {
			return err
		}

		if err := rec.observe("decrypt", func() error {
			em, err := kem.DeserializeEncryptedMessage(encrypted)
			if err != nil {
				return err
			}
			plaintext, err := k.Decrypt(sk, em)
			if err != nil {
				return err
			}
			if !bytes.Equal(plaintext, message) {
				return errors.New("decrypted message mismatch")
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
