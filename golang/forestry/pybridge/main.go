// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
	"gonum.org/v1/gonum/mat"
)

//loadedForest is a model together with the training set its leaves refer to.
type loadedForest struct {
	forest       *rfl.Forest
	trainingData *rfl.DataFrame
}

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	forests           = make(map[uint64]*loadedForest)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeForest(f *loadedForest) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	forests[handle] = f
	nextHandle++
	return handle
}

func fetchForest(handle uint64) (*loadedForest, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	f, ok := forests[handle]
	if !ok {
		return nil, errors.Errorf("invalid forest handle %d", handle)
	}
	return f, nil
}

//export FreeForest
func FreeForest(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(forests, uint64(handle))
}

//checkBuffer validates the pointer and length of a C buffer, empty is true for a zero length
//buffer, which may be null.
func checkBuffer(isNull bool, length int) (empty bool, err error) {
	switch {
	case length < 0:
		return false, errors.Errorf("negative length %d", length)
	case length == 0:
		return true, nil
	case isNull:
		return false, errors.New("null pointer for non-empty slice")
	}
	return false, nil
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	src, err := sliceFromPtr(ptr, length)
	if err != nil || src == nil {
		return nil, err
	}
	return append([]float64(nil), src...), nil
}

func sliceFromPtr(ptr *C.double, length int) ([]float64, error) {
	empty, err := checkBuffer(ptr == nil, length)
	if err != nil || empty {
		return nil, err
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

func copyIntSlice(ptr *C.int, length int) ([]int, error) {
	empty, err := checkBuffer(ptr == nil, length)
	if err != nil || empty {
		return nil, err
	}
	dst := make([]int, length)
	for ind, val := range unsafe.Slice(ptr, length) {
		dst[ind] = int(val)
	}
	return dst, nil
}

func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r := int(rows)
	c := int(cols)
	if r <= 0 || c <= 0 {
		return nil, errors.Errorf("invalid matrix dimensions %dx%d", r, c)
	}
	data, err := copyFloatSlice(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, data), nil
}

//export LoadForest
func LoadForest(
	path *C.char,
	trainFeaturesPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	categoricalPtr *C.int,
	categoricalLen C.int,
) C.ulonglong {
	setLastError(nil)
	logSilenceOnce.Do(func() {
		log.Logger = zerolog.Nop()
	})

	forest, err := rfl.LoadForest(C.GoString(path))
	if err != nil {
		setLastError(err)
		return 0
	}

	features, err := buildDense(trainFeaturesPtr, rows, cols)
	if err != nil {
		setLastError(errors.Wrap(err, "training features"))
		return 0
	}
	target, err := copyFloatSlice(targetPtr, int(rows))
	if err != nil {
		setLastError(errors.Wrap(err, "training target"))
		return 0
	}
	categorical, err := copyIntSlice(categoricalPtr, int(categoricalLen))
	if err != nil {
		setLastError(errors.Wrap(err, "categorical features"))
		return 0
	}
	trainingData, err := rfl.NewDataFrame(features, target, categorical, nil)
	if err != nil {
		setLastError(err)
		return 0
	}

	return C.ulonglong(storeForest(&loadedForest{forest: forest, trainingData: trainingData}))
}

//PredictForest writes rows predictions into outputPtr. A non-null weightsPtr selects the weight
//matrix aggregation and receives the rows x training rows accumulator in row-major order.
//
//export PredictForest
func PredictForest(
	handle C.ulonglong,
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	outputPtr *C.double,
	weightsPtr *C.double,
	treesNumber C.int,
	threadsNum C.int,
) C.int {
	setLastError(nil)
	f, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}

	xNew, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 2
	}

	params := rfl.PredictParams{
		Aggregation: rfl.AggregationAverage,
		ThreadsNum:  int(threadsNum),
		TreesNumber: int(treesNumber),
	}
	if weightsPtr != nil {
		params.Aggregation = rfl.AggregationWeightMatrix
	}
	result, err := f.forest.Predict(xNew, f.trainingData, params)
	if err != nil {
		setLastError(err)
		return 3
	}

	outSlice, err := sliceFromPtr(outputPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 4
	}
	copy(outSlice, result.Predictions)

	if weightsPtr != nil {
		weights := result.WeightMatrix.Dense()
		weightsSlice, err := sliceFromPtr(weightsPtr, int(rows)*f.trainingData.TrainingRows())
		if err != nil {
			setLastError(err)
			return 5
		}
		copy(weightsSlice, weights.RawMatrix().Data)
	}
	return 0
}

//export TrainingRows
func TrainingRows(handle C.ulonglong) C.int {
	setLastError(nil)
	f, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(f.trainingData.TrainingRows())
}

//export RenderForest
func RenderForest(handle C.ulonglong, prefix, figureType, directory *C.char) C.int {
	setLastError(nil)
	f, err := fetchForest(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	goPrefix := C.GoString(prefix)
	goFigureType := C.GoString(figureType)
	goDir := C.GoString(directory)
	if goPrefix == "" {
		goPrefix = "tree"
	}
	if goFigureType == "" {
		goFigureType = "svg"
	}
	if goDir == "" {
		goDir = "."
	}
	if err := f.forest.RenderTrees(goPrefix, goFigureType, goDir, f.trainingData.CategoricalFeatureIDs()); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
