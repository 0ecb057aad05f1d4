package pdr

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func numericPDR(sensorID uint16) entities.NumericSensorPDR {
	return entities.NumericSensorPDR{
		SensorID:       sensorID,
		EntityType:     0x0089,
		EntityInstance: 1,
		UnitModifier:   -5,
		Resolution:     1,
		CriticalHigh:   0x000566d0,
		CriticalLow:    0x0004baf0,
	}
}

func platformConfig() entities.PlatformConfig {
	return entities.PlatformConfig{
		PldmThreads: []entities.PldmThreadConfig{
			{ID: 0, Name: "ADC_PLDM_SENSOR_THREAD", Sensors: []entities.PldmSensorConfig{{PDR: numericPDR(0x01)}}},
			{ID: 1, Name: "VR_PLDM_SENSOR_THREAD", Sensors: []entities.PldmSensorConfig{{PDR: numericPDR(0x02)}}},
		},
		SensorNames: []entities.AuxNameConfig{
			{SensorID: 0x01, Name: "ADC_P12V_STBY_VOLT_V"},
			{SensorID: 0x02, Name: "VR_VCCIN_TEMP_C"},
		},
	}
}

func nullLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

type repositorySuite struct {
	suite.Suite
	conf entities.PlatformConfig
	repo *Repository
}

func (s *repositorySuite) SetupTest() {
	s.conf = platformConfig()
	s.conf.EntityNames = []entities.EntityNameConfig{{EntityType: 0x0089, EntityInstance: 1, Name: "SI_SLOT_1"}}
	s.repo = Build(NewConfigLoader(s.conf), nullLogger())
}

func (s *repositorySuite) TestGivenAllKindsThenHandleRangesAreContiguous() {
	info := s.repo.Info()
	assert.Equal(s.T(), StateAvailable, info.State)
	assert.Equal(s.T(), uint32(5), info.RecordCount)
	assert.Equal(s.T(), uint32(NumericSensorPDRSize), info.LargestRecordSize)
	entitySize := entityAuxNamesFixedSize + 2*10
	assert.Equal(s.T(), uint32(2*NumericSensorPDRSize+2*SensorAuxNamesPDRSize+entitySize), info.RepositorySize)

	expected := []struct {
		pdrType uint8
		size    int
	}{
		{entities.PDRTypeNumericSensor, NumericSensorPDRSize},
		{entities.PDRTypeNumericSensor, NumericSensorPDRSize},
		{entities.PDRTypeSensorAuxiliaryName, SensorAuxNamesPDRSize},
		{entities.PDRTypeSensorAuxiliaryName, SensorAuxNamesPDRSize},
		{entities.PDRTypeEntityAuxiliaryName, entitySize},
	}
	for handle, want := range expected {
		record, err := s.repo.RecordByHandle(uint32(handle))
		s.Require().NoError(err)
		s.Require().Len(record, want.size)
		assert.Equal(s.T(), uint32(handle), binary.LittleEndian.Uint32(record[0:4]))
		assert.Equal(s.T(), entities.PDRHeaderVersion, record[4])
		assert.Equal(s.T(), want.pdrType, record[5])
		assert.Equal(s.T(), uint16(want.size-entities.PDRHeaderSize), binary.LittleEndian.Uint16(record[8:10]))
	}

	_, err := s.repo.RecordByHandle(5)
	assert.ErrorIs(s.T(), err, ErrInvalidHandle)
}

func (s *repositorySuite) TestGivenNumericRecordThenFieldsAreLittleEndian() {
	record, err := s.repo.RecordByHandle(0)
	s.Require().NoError(err)
	assert.Equal(s.T(), uint16(0x01), binary.LittleEndian.Uint16(record[12:14]))
	assert.Equal(s.T(), int8(-5), int8(record[23]))
	assert.Equal(s.T(), float32(1), math.Float32frombits(binary.LittleEndian.Uint32(record[33:37])))
	assert.Equal(s.T(), uint32(0x000566d0), binary.LittleEndian.Uint32(record[89:93]))
}

func (s *repositorySuite) TestGivenNameRecordThenPayloadIsUTF16BigEndian() {
	record, err := s.repo.RecordByHandle(2)
	s.Require().NoError(err)
	assert.Equal(s.T(), uint16(0x01), binary.LittleEndian.Uint16(record[12:14]))
	assert.Equal(s.T(), []byte{'e', 'n', 0}, record[16:19])
	assert.Equal(s.T(), []byte{0x00, 'A', 0x00, 'D', 0x00, 'C'}, record[19:25])
}

func (s *repositorySuite) TestGivenSensorIDThenComposeEntityAndSensorName() {
	name, err := s.repo.SensorName(0x01, 0)
	s.Require().NoError(err)
	assert.Equal(s.T(), "SI_SLOT_1_ADC_P12V_STBY_VOLT_V", name)

	name, err = s.repo.SensorName(0x02, 9)
	s.Require().NoError(err)
	assert.Equal(s.T(), "SI_SLOT_1", name)
}

func (s *repositorySuite) TestGivenUnknownSensorThenPlaceholderAndError() {
	name, err := s.repo.SensorName(0x7F, 0)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Equal(s.T(), UnknownSensorName, name)
}

func (s *repositorySuite) TestGivenStoredThresholdsThenConvertWithUnitModifier() {
	high, low, err := s.repo.CriticalHighLow(0x01)
	s.Require().NoError(err)
	assert.InDelta(s.T(), 3.54, high, 1e-9)
	assert.InDelta(s.T(), 3.1, low, 1e-9)

	s.Require().NoError(s.repo.SetCriticalHigh(0x01, 3.3))
	s.Require().NoError(s.repo.SetCriticalLow(0x01, 2.97))
	rec, ok := s.repo.Numeric(0x01)
	s.Require().True(ok)
	assert.Equal(s.T(), uint32(330000), rec.CriticalHigh)
	assert.Equal(s.T(), uint32(297000), rec.CriticalLow)

	high, err = s.repo.CriticalHigh(0x01)
	s.Require().NoError(err)
	assert.InDelta(s.T(), 3.3, high, 1e-9)
	low, err = s.repo.CriticalLow(0x01)
	s.Require().NoError(err)
	assert.InDelta(s.T(), 2.97, low, 1e-9)

	assert.ErrorIs(s.T(), s.repo.SetCriticalLow(0x01, -1), ErrOutOfRange)
	assert.ErrorIs(s.T(), s.repo.SetCriticalHigh(0x7F, 1), ErrNotFound)
	_, _, err = s.repo.CriticalHighLow(0x7F)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *repositorySuite) TestGivenHandleThenNextRecordHandle() {
	assert.Equal(s.T(), uint32(1), s.repo.NextRecordHandle(0))
	assert.Equal(s.T(), uint32(4), s.repo.NextRecordHandle(3))
	assert.Equal(s.T(), uint32(0), s.repo.NextRecordHandle(4))
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(repositorySuite))
}

func TestGivenTwoNumericAndTwoNameRecordsThenFourHandles(t *testing.T) {
	repo := Build(NewConfigLoader(platformConfig()), nullLogger())
	assert.Equal(t, uint32(4), repo.Info().RecordCount)

	for handle, pdrType := range []uint8{
		entities.PDRTypeNumericSensor,
		entities.PDRTypeNumericSensor,
		entities.PDRTypeSensorAuxiliaryName,
		entities.PDRTypeSensorAuxiliaryName,
	} {
		record, err := repo.RecordByHandle(uint32(handle))
		require.NoError(t, err)
		assert.Equal(t, pdrType, record[5])
	}
	_, err := repo.RecordByHandle(4)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	name, err := repo.SensorName(0x02, 0)
	require.NoError(t, err)
	assert.Equal(t, "VR_VCCIN_TEMP_C", name)
}

func TestGivenSignedRangeFormatThenNegativeThresholds(t *testing.T) {
	conf := platformConfig()
	conf.PldmThreads[0].Sensors[0].PDR.RangeFieldFormat = rangeFormatSint32
	conf.PldmThreads[0].Sensors[0].PDR.UnitModifier = -1
	repo := Build(NewConfigLoader(conf), nullLogger())

	require.NoError(t, repo.SetCriticalLow(0x01, -10.5))
	rec, _ := repo.Numeric(0x01)
	assert.Equal(t, int32(-105), int32(rec.CriticalLow))
	low, err := repo.CriticalLow(0x01)
	require.NoError(t, err)
	assert.InDelta(t, -10.5, low, 1e-9)
}

func TestGivenHostUnitsThenWireTransformRoundTrips(t *testing.T) {
	host := []uint16{0x0041, 0x6E29, 0xD83D, 0xDE00, 0}
	wire := ToWire(host)
	assert.Equal(t, []uint16{0x4100, 0x296E, 0x3DD8, 0x00DE, 0}, wire)
	assert.Equal(t, host, FromWire(wire))
}

func TestGivenNonASCIINameThenTranscodeAndTruncateOnRuneBoundary(t *testing.T) {
	units := EncodeName("温度😀")
	name, err := decodeWireName(ToWire(units[:]))
	require.NoError(t, err)
	assert.Equal(t, "温度😀", name)
	assert.Equal(t, "温", truncateUTF8(name, 4))
	assert.Equal(t, "温度", truncateUTF8(name, 9))
}

func TestGivenLongNameThenEncodeKeepsTerminator(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "x"
	}
	units := EncodeName(long)
	assert.Equal(t, entities.MaxAuxNameLen-1, nameLen(units[:]))
	assert.Equal(t, uint16(0), units[entities.MaxAuxNameLen-1])
}

func TestGivenTinyBufferThenBufferTooSmall(t *testing.T) {
	conf := platformConfig()
	conf.SensorNames[0].Name = "温度"
	repo := Build(NewConfigLoader(conf), nullLogger())
	_, err := repo.SensorName(0x01, 2)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}
