package v8

import (
	"fmt"
	"time"

	"rogchap.com/v8go"
)

// Execute run the script and return the value of its last expression. The
// execution is terminated when it runs longer than the factory timeout.
func (context *Context) Execute(script string, origin string) (interface{}, error) {
	context.mu.Lock()
	defer context.mu.Unlock()

	if context.ctx == nil {
		return nil, fmt.Errorf("[V8] the context was disposed")
	}

	if origin == "" {
		origin = "anonymous.js"
	}

	type result struct {
		value *v8go.Value
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		value, err := context.ctx.RunScript(script, origin)
		ch <- result{value: value, err: err}
	}()

	timer := time.NewTimer(context.timeout)
	defer timer.Stop()

	var res result
	select {
	case res = <-ch:
	case <-timer.C:
		context.iso.TerminateExecution()
		res = <-ch
		if res.err == nil {
			res.err = fmt.Errorf("execution timeout %v", context.timeout)
		}
	}

	if res.err != nil {
		if e, ok := res.err.(*v8go.JSError); ok {
			return nil, fmt.Errorf("[V8] %s %s", origin, e.Message)
		}
		return nil, fmt.Errorf("[V8] %s %s", origin, res.err.Error())
	}

	return GoValue(res.value)
}

// Set a global variable
func (context *Context) Set(name string, value interface{}) error {
	context.mu.Lock()
	defer context.mu.Unlock()

	if context.ctx == nil {
		return fmt.Errorf("[V8] the context was disposed")
	}

	jsValue, err := JsValue(context.ctx, value)
	if err != nil {
		return fmt.Errorf("[V8] set %s %s", name, err.Error())
	}

	return context.ctx.Global().Set(name, jsValue)
}

// Get a global variable
func (context *Context) Get(name string) (interface{}, error) {
	context.mu.Lock()
	defer context.mu.Unlock()

	if context.ctx == nil {
		return nil, fmt.Errorf("[V8] the context was disposed")
	}

	jsValue, err := context.ctx.Global().Get(name)
	if err != nil {
		return nil, fmt.Errorf("[V8] get %s %s", name, err.Error())
	}

	return GoValue(jsValue)
}

// Dispose close the context and its isolate
func (context *Context) Dispose() {
	context.mu.Lock()
	defer context.mu.Unlock()

	if context.ctx == nil {
		return
	}

	context.ctx.Close()
	context.iso.Dispose()
	context.ctx = nil
	context.iso = nil
}
