package env

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// values é preenchida a partir das variáveis de ambiente. O nome do campo é o
// nome da variável; a tag `default` torna a variável opcional e a tag
// `secret` esconde o valor em ShowEnvValues.
type values struct {
	SERVER_ADDR string `default:"0.0.0.0"`
	SERVER_PORT int    `default:"8080"`
	REDIS_ADDR  string

	GATEWAY_URL   string
	AUTHORIZATION string `secret:"true"`
	MERCHANT_ID   string

	CONFIG_TTL_SECONDS         int `default:"300"`
	CONFIG_REFRESH_INTERVAL_MS int `default:"60000"`
	CONFIG_FETCH_RETRIES       int `default:"3"`

	WORKER_POOL       int `default:"4"`
	COLLECT_CHAN_SIZE int `default:"256"`

	LOG_LEVEL  string `default:"info"`
	LOG_FORMAT string `default:"text"`
}

var Values = &values{}

func Load() error {
	// Carrega o arquivo .env, se existir.
	err := godotenv.Load()
	if err != nil {
		log.Println("Aviso: Não foi possível carregar o arquivo .env. Usando variáveis de ambiente do sistema.")
	}

	return load(Values)
}

func load(dst *values) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()

	var missingVars []string
	var invalidVars []string

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		envVarName := fieldType.Name

		envVarValue, ok := os.LookupEnv(envVarName)
		if !ok {
			def, hasDefault := fieldType.Tag.Lookup("default")
			if !hasDefault {
				missingVars = append(missingVars, envVarName)
				continue
			}
			envVarValue = def
		}

		if err := setField(field, envVarValue); err != nil {
			log.Printf("Aviso: Não foi possível fazer o parse de '%s' para a variável %s: %v\n", envVarValue, envVarName, err)
			invalidVars = append(invalidVars, envVarName)
		}
	}

	if len(missingVars) > 0 {
		for i, v := range missingVars {
			missingVars[i] = "- " + v
		}
		details := strings.Join(missingVars, "\n")
		return fmt.Errorf("some environment variables are missing:\n%s", details)
	}
	if len(invalidVars) > 0 {
		return fmt.Errorf("some environment variables are invalid: %s", strings.Join(invalidVars, ", "))
	}

	return nil
}

// setField faz o parse do valor para o tipo do campo.
func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)

	case reflect.Bool:
		boolValue, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)

	case reflect.Float32, reflect.Float64:
		floatValue, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)

	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

func ShowEnvValues() {
	log.SetPrefix("Env: ")
	log.SetFlags(0)
	defer log.SetPrefix("")
	defer log.SetFlags(log.LstdFlags)
	defer log.Println("---------------------------------------------------------------------------------------------")

	log.Println("---------------------------------------------------------------------------------------------")
	for _, line := range formatValues(Values) {
		log.Println(line)
	}
}

func formatValues(src *values) []string {
	v := reflect.ValueOf(src).Elem()
	t := v.Type()

	// Encontra o comprimento do nome do campo mais longo para alinhamento.
	maxLength := 0
	for i := 0; i < t.NumField(); i++ {
		if len(t.Field(i).Name) > maxLength {
			maxLength = len(t.Field(i).Name)
		}
	}

	format := fmt.Sprintf("%%-%ds: %%v", maxLength)

	lines := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		var value any = v.Field(i).Interface()
		if t.Field(i).Tag.Get("secret") == "true" && v.Field(i).String() != "" {
			value = "********"
		}
		lines = append(lines, fmt.Sprintf(format, t.Field(i).Name, value))
	}
	return lines
}
