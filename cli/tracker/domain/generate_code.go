package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

type Alphabet string

const (
	AlphanumericUpper Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Digits            Alphabet = "0123456789"

	CodeLength         = 16
	DefaultMaxAttempts = 10
	MaxCodesPerBatch   = 100
)

type CodeChecker interface {
	IsCodeTaken(code string) (bool, error)
}

type CodeGenerator struct {
	Checker     CodeChecker
	MaxAttempts int
	// Random по умолчанию crypto/rand.Reader.
	Random io.Reader
}

func (g *CodeGenerator) maxAttempts() int {
	if g.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return g.MaxAttempts
}

func (g *CodeGenerator) random() io.Reader {
	if g.Random == nil {
		return rand.Reader
	}
	return g.Random
}

func randomCode(r io.Reader, alphabet Alphabet) (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("ошибка источника случайных чисел: %w", err)
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}

func (g *CodeGenerator) Generate(alphabet Alphabet) (string, error) {
	return g.generate(alphabet, nil)
}

// generate пропускает коды, уже занятые в хранилище или выданные в этой же пачке.
func (g *CodeGenerator) generate(alphabet Alphabet, issued map[string]struct{}) (string, error) {
	attempts := g.maxAttempts()

	for i := 0; i < attempts; i++ {
		code, err := randomCode(g.random(), alphabet)
		if err != nil {
			return "", err
		}

		if _, ok := issued[code]; ok {
			continue
		}

		taken, err := g.Checker.IsCodeTaken(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		log.WithField("attempt", i+1).Debug("Сгенерированный код уже занят, повтор")
	}

	return "", &types.GenerationExhaustedError{Attempts: attempts}
}

type GenerateCodes struct {
	PrimaryRepository PrimaryRepository
	Generator         *CodeGenerator
}

func (d *GenerateCodes) Run(count int, generatedBy string) ([]string, error) {
	if count < 1 || count > MaxCodesPerBatch {
		return nil, &types.ValidationError{Message: fmt.Sprintf("Please provide a count between 1 and %d.", MaxCodesPerBatch)}
	}

	issued := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := d.Generator.generate(Digits, issued)
		if err != nil {
			return nil, err
		}
		issued[code] = struct{}{}
		codes = append(codes, code)
	}

	if err := d.PrimaryRepository.AddGeneratedCodes(codes, generatedBy); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"count": count, "generated_by": generatedBy}).Info("Сгенерированы QR-коды")
	return codes, nil
}
