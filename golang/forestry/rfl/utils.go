package rfl

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//HandleError stops the program on an error it cannot recover from.
func HandleError(err error) {
	if err != nil {
		log.Panic().Err(err).Msg("unrecoverable error")
	}
}

//Height returns the number of rows of a matrix.
func Height(m mat.Matrix) int {
	h, _ := m.Dims()
	return h
}

//ReadNpy reads a two dimensional npy file into a dense matrix.
func ReadNpy(fileName string) (*mat.Dense, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", fileName)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "npy header of %s", fileName)
	}
	if len(r.Header.Descr.Shape) != 2 {
		return nil, errors.Errorf("%s has shape %v, a matrix is expected", fileName, r.Header.Descr.Shape)
	}

	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "read %s", fileName)
	}
	return denseMat, nil
}

//ReadNpyVector reads an npy file of any shape as a flat float64 slice.
func ReadNpyVector(fileName string) ([]float64, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", fileName)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "npy header of %s", fileName)
	}

	var values []float64
	if err := r.Read(&values); err != nil {
		return nil, errors.Wrapf(err, "read %s", fileName)
	}
	return values, nil
}

//WriteNpy writes a matrix or a slice of numbers into an npy file.
func WriteNpy(fileName string, val interface{}) (err error) {
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "create %s", fileName)
	}
	defer func() {
		if closeErr := dst.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "close %s", fileName)
		}
	}()

	if err = npyio.Write(dst, val); err != nil {
		return errors.Wrapf(err, "write %s", fileName)
	}
	log.Debug().Str("file", fileName).Msg("npy written")
	return nil
}
