package token

import "net/http"

// AppVersion is the SmartRent resident app version the bridge identifies as.
// The server expects these client identification headers to stay constant.
const AppVersion = "2.23.0"

const userAgent = "SmartRent/" + AppVersion + " (com.smartrent.resident; build:1672; iOS 15.2.1) Alamofire/4.9.1"

var commonHeaders = map[string]string{
	"Connection":      "keep-alive",
	"User-Agent":      userAgent,
	"Accept-Language": "en-US;q=1.0",
	"Accept-Encoding": "gzip;q=1.0, compress;q=0.5",
}

// AuthHeaders returns the headers sent on /sessions and /tokens requests.
func AuthHeaders() http.Header {
	h := headerFrom(commonHeaders)
	h.Set("Accept", "*/*")
	return h
}

// APIHeaders returns the headers sent on device API requests.
func APIHeaders() http.Header {
	h := headerFrom(commonHeaders)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("X-AppVersion", "ios-resapp-"+AppVersion)
	return h
}

func headerFrom(values map[string]string) http.Header {
	h := make(http.Header, len(values)+3)
	for k, v := range values {
		h.Set(k, v)
	}
	return h
}
