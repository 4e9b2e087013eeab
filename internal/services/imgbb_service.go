package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ImgbbService uploads product images to the imgbb hosting API.
type ImgbbService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewImgbbService creates a new ImgbbService.
func NewImgbbService(apiKey string) *ImgbbService {
	return &ImgbbService{
		apiKey:  apiKey,
		baseURL: "https://api.imgbb.com/1/upload",
		client:  http.DefaultClient,
	}
}

// NewImgbbServiceWithBaseURL is used by tests to point at a stub server.
func NewImgbbServiceWithBaseURL(apiKey, baseURL string) *ImgbbService {
	s := NewImgbbService(apiKey)
	s.baseURL = baseURL
	return s
}

type imgbbResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload sends one base64-encoded image and returns its hosted URL.
func (s *ImgbbService) Upload(imageBase64 string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("image hosting API key not configured")
	}

	form := url.Values{}
	form.Set("image", imageBase64)

	endpoint := fmt.Sprintf("%s?key=%s", s.baseURL, url.QueryEscape(s.apiKey))
	resp, err := s.client.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("image hosting returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed imgbbResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	if parsed.Data.URL == "" {
		return "", fmt.Errorf("image hosting returned no URL")
	}

	return parsed.Data.URL, nil
}

// UploadAll uploads every image in order and returns the hosted URLs.
func (s *ImgbbService) UploadAll(imagesBase64 []string) ([]string, error) {
	urls := make([]string, 0, len(imagesBase64))
	for _, image := range imagesBase64 {
		hosted, err := s.Upload(image)
		if err != nil {
			return nil, err
		}
		urls = append(urls, hosted)
	}
	return urls, nil
}
