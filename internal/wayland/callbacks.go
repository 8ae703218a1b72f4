package wayland

/*
#include <stdint.h>
*/
import "C"

import "runtime/cgo"

// value resolves the cgo.Handle passed as listener user data.
func value(data C.uintptr_t) any {
	return cgo.Handle(uintptr(data)).Value()
}

//export goRegistryGlobal
func goRegistryGlobal(data C.uintptr_t, name C.uint32_t, iface *C.char, version C.uint32_t) {
	if c, ok := value(data).(*Client); ok {
		c.bindGlobal(uint32(name), C.GoString(iface), uint32(version))
	}
}

//export goRegistryGlobalRemove
func goRegistryGlobalRemove(data C.uintptr_t, name C.uint32_t) {
	if c, ok := value(data).(*Client); ok {
		c.removeGlobal(uint32(name))
	}
}

//export goOutputMode
func goOutputMode(data C.uintptr_t, width, height C.int32_t) {
	if o, ok := value(data).(*output); ok {
		o.setMode(int(width), int(height))
	}
}

//export goOutputScale
func goOutputScale(data C.uintptr_t, factor C.int32_t) {
	if o, ok := value(data).(*output); ok {
		o.setScale(int(factor))
	}
}

//export goOutputName
func goOutputName(data C.uintptr_t, name *C.char) {
	if o, ok := value(data).(*output); ok {
		o.setName(C.GoString(name))
	}
}

//export goOutputDone
func goOutputDone(data C.uintptr_t) {
	if o, ok := value(data).(*output); ok {
		o.done()
	}
}

//export goLayerConfigure
func goLayerConfigure(data C.uintptr_t, width, height C.uint32_t) {
	if s, ok := value(data).(*Surface); ok {
		s.configure(uint32(width), uint32(height))
	}
}

//export goLayerClosed
func goLayerClosed(data C.uintptr_t) {
	if s, ok := value(data).(*Surface); ok {
		s.close()
	}
}

//export goFrameDone
func goFrameDone(data C.uintptr_t) {
	if s, ok := value(data).(*Surface); ok {
		s.frameDone()
	}
}

//export goBufferRelease
func goBufferRelease(data C.uintptr_t) {
	if b, ok := value(data).(*shmBuffer); ok {
		b.release()
	}
}
