package shell

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// randMax bounds RANDOM to 15 bits.
const randMax = 32767

// Park-Miller constants.
const (
	pmModulus    = 0x7fffffff
	pmMultiplier = 16807
	pmQuotient   = pmModulus / pmMultiplier
	pmRemainder  = pmModulus % pmMultiplier
)

// specials computes the variables the shell maintains itself.
type specials struct {
	shell *Shell
	start time.Time

	mu   sync.Mutex
	rand uint32

	lineno atomic.Int64
}

func newSpecials(s *Shell) *specials {
	sp := &specials{shell: s, start: s.now()}
	sp.reseed(s.seed)
	return sp
}

func (sp *specials) reseed(seed int64) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.rand = uint32(uint64(seed) % pmModulus)
	if sp.rand == 0 {
		sp.rand = 123459876
	}
}

// next advances the minimal standard generator.
func (sp *specials) next() uint32 {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	hi := int64(sp.rand / pmQuotient)
	lo := int64(sp.rand % pmQuotient)
	t := pmMultiplier*lo - pmRemainder*hi
	if t <= 0 {
		t += pmModulus
	}
	sp.rand = uint32(t)
	return sp.rand & randMax
}

func (sp *specials) install(store *variables.MemStore) {
	itoa := func(n int64) []byte { return []byte(strconv.FormatInt(n, 10)) }

	store.SetSpecial("RANDOM", func() []byte { return itoa(int64(sp.next())) })
	store.SetSpecial("SRANDOM", func() []byte {
		var b [4]byte
		_, _ = rand.Read(b[:])
		return itoa(int64(binary.LittleEndian.Uint32(b[:])))
	})
	store.SetSpecial("LINENO", func() []byte { return itoa(sp.lineno.Load()) })
	store.SetSpecial("SECONDS", func() []byte {
		return itoa(int64(sp.shell.now().Sub(sp.start) / time.Second))
	})
	store.SetSpecial("EPOCHSECONDS", func() []byte { return itoa(sp.shell.now().Unix()) })
	store.SetSpecial("EPOCHREALTIME", func() []byte {
		now := sp.shell.now()
		return fmt.Appendf(nil, "%d.%06d", now.Unix(), now.Nanosecond()/int(time.Microsecond))
	})
	store.SetSpecial("BASHPID", func() []byte { return itoa(int64(os.Getpid())) })
	store.SetSpecial("$", func() []byte { return itoa(int64(os.Getpid())) })
	store.SetSpecial("?", func() []byte { return itoa(int64(sp.shell.status)) })
	store.SetSpecial("#", func() []byte { return []byte("0") })
	store.SetSpecial("0", func() []byte { return []byte(sp.shell.name) })
}
