// Package webutils holds the small response helpers the preview server's
// handlers share.
package webutils

import (
	"encoding/json"
	"image"
	"image/png"
	"log"
	"net/http"
)

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	WriteResult(w, res)
}

func WritePng(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("Error when encoding png response: %v", err)
	}
}

func WriteText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	WriteResult(w, []byte(text))
}

func WriteResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		log.Printf("Error when writing response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		log.Printf("Error marshaling error '%v': %v", err, merr)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	WriteResult(w, data)
}

func WriteNotFound(w http.ResponseWriter, what string) {
	w.WriteHeader(http.StatusNotFound)
	WriteText(w, what+" not found")
}
