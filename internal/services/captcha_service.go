package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CaptchaSessionKey is where the expected answer lives between the form and its submission.
const CaptchaSessionKey = "captcha_answer"

// CaptchaService produces small arithmetic questions for the registration form.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return NewSeededCaptchaService(time.Now().UnixNano())
}

// NewSeededCaptchaService gives repeatable questions, for tests.
func NewSeededCaptchaService(seed int64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(seed))}
}

// GenerateMathProblem returns a question such as "3 + 5" and its answer.
// Subtractions never go below zero.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	s.mu.Lock()
	a, b, op := s.rnd.Intn(10), s.rnd.Intn(10), s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// CheckAnswer compares the user's input with the stored answer. A missing
// answer (no form was served) never matches.
func CheckAnswer(expected interface{}, input string) bool {
	want, ok := expected.(int)
	if !ok {
		return false
	}
	got, err := strconv.Atoi(strings.TrimSpace(input))
	return err == nil && got == want
}
