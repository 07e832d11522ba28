package builtin

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// programCache is a thread-safe LRU cache for compiled expression programs,
// shared by the transform and conditional kinds.
type programCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.Mutex
}

type programEntry struct {
	key     string
	program *vm.Program
}

func newProgramCache(capacity int) *programCache {
	if capacity <= 0 {
		capacity = 100
	}

	return &programCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// compile returns the compiled program for source, compiling and caching it
// on first use. The env shapes type checking only; programs are reusable
// across envs with the same shape.
func (pc *programCache) compile(source string, env map[string]any) (*vm.Program, error) {
	pc.mu.Lock()
	if element, found := pc.cache[source]; found {
		pc.lruList.MoveToFront(element)
		program := element.Value.(*programEntry).program
		pc.mu.Unlock()
		return program, nil
	}
	pc.mu.Unlock()

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, err
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	if element, found := pc.cache[source]; found {
		pc.lruList.MoveToFront(element)
		return element.Value.(*programEntry).program, nil
	}

	element := pc.lruList.PushFront(&programEntry{key: source, program: program})
	pc.cache[source] = element

	if pc.lruList.Len() > pc.capacity {
		oldest := pc.lruList.Back()
		if oldest != nil {
			pc.lruList.Remove(oldest)
			delete(pc.cache, oldest.Value.(*programEntry).key)
		}
	}

	return program, nil
}

func (pc *programCache) len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.lruList.Len()
}
