package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	saved   []string
	deleted []string
	err     error
}

func (s *fakeStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	url := "http://localhost:8080/uploads/" + subPath + "/" + fileHeader.Filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return s.SaveFileWithPath(fileHeader, "")
}

func (s *fakeStorage) DeleteFile(filePath string) error {
	s.deleted = append(s.deleted, filePath)
	return nil
}

// multipartFileHeader builds a real *multipart.FileHeader the way the HTTP
// layer would.
func multipartFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUploadStoresFileAndMetadata(t *testing.T) {
	files := newFakeFileRepo()
	storage := &fakeStorage{}
	fileService := NewFileService(files, storage, testLogger())

	header := multipartFileHeader(t, "transcript.pdf", "application/pdf", []byte("%PDF-1.4 test"))
	resp, err := fileService.Upload(context.Background(), applicantActor, header)
	require.NoError(t, err)

	assert.Equal(t, "transcript.pdf", resp.FileName)
	assert.Equal(t, "application/pdf", resp.FileType)
	assert.Equal(t, int64(len("%PDF-1.4 test")), resp.FileSize)
	assert.Contains(t, resp.FileURL, "attachments/transcript.pdf")

	stored, err := files.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, applicantActor.ID, stored.UploadedBy)
	require.Len(t, storage.saved, 1)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	files := newFakeFileRepo()
	storage := &fakeStorage{}
	fileService := NewFileService(files, storage, testLogger())

	header := multipartFileHeader(t, "big.bin", "application/octet-stream", []byte("x"))
	header.Size = maxUploadSize + 1

	_, err := fileService.Upload(context.Background(), applicantActor, header)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, storage.saved)
}

func TestUploadCleansUpOnMetadataFailure(t *testing.T) {
	files := newFakeFileRepo()
	files.failErr = errors.New("connection reset")
	storage := &fakeStorage{}
	fileService := NewFileService(files, storage, testLogger())

	header := multipartFileHeader(t, "transcript.pdf", "application/pdf", []byte("data"))
	_, err := fileService.Upload(context.Background(), applicantActor, header)
	require.Error(t, err)
	require.Len(t, storage.deleted, 1)
}
