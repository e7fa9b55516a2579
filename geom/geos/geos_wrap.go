package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"

extern void goNotice(char *msg);
extern void goError(char *msg);

static void notice_handler(const char *msg, void *userdata) {
	goNotice((char *)msg);
}

static void error_handler(const char *msg, void *userdata) {
	goError((char *)msg);
}

GEOSContextHandle_t initGEOSContext() {
	GEOSContextHandle_t handle = GEOS_init_r();
	if (handle == NULL) {
		return NULL;
	}
	GEOSContext_setNoticeMessageHandler_r(handle, notice_handler, NULL);
	GEOSContext_setErrorMessageHandler_r(handle, error_handler, NULL);
	return handle;
}
*/
import "C"
