package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
)

func strptr(s string) *string { return &s }

// SeedDefaults inserts a starter catalog of achievements and shop items when
// the respective tables are empty. Runs only in development (see main).
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Conquista{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		conquistas := []models.Conquista{
			{Nome: "Primeira Entrega", Descricao: strptr("Conclua sua primeira tarefa aprovada"), Categoria: "valor", Raridade: "bronze", RecompensaDicoins: 10, Criterio: models.JSONMap{"tipo": "tarefas_concluidas", "quantidade": 1}},
			{Nome: "Comunicador Nato", Descricao: strptr("Destaque em comunicação na sprint"), Categoria: "comunicacao", Raridade: "prata", RecompensaDicoins: 25},
			{Nome: "Arquiteto do Caos", Descricao: strptr("Estruture um processo do zero"), Categoria: "estruturacao", Raridade: "ouro", RecompensaDicoins: 50},
		}
		if err := db.Create(&conquistas).Error; err != nil {
			return err
		}
		log.Printf("[seed] %d conquistas criadas", len(conquistas))
	}

	if err := db.Model(&models.ShopItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		items := []models.ShopItem{
			{Nome: "Camiseta Orc", Categoria: "roupa", PrecoDC: 30, Raridade: "comum", RequerNivel: models.NivelTrainee, Disponivel: true},
			{Nome: "Óculos de Maestro", Categoria: "acessorio", PrecoDC: 120, Raridade: "raro", RequerNivel: models.NivelAssessor, Disponivel: true},
			{Nome: "Batuta Dourada", Categoria: "ferramenta", PrecoDC: 400, Raridade: "epico", RequerNivel: models.NivelMaestro, Disponivel: true},
			{Nome: "Dragão de Estimação", Categoria: "pet", PrecoDC: 900, Raridade: "lendario", RequerNivel: models.NivelVirtuoso, Disponivel: true},
		}
		if err := db.Create(&items).Error; err != nil {
			return err
		}
		log.Printf("[seed] %d itens de loja criados", len(items))
	}

	return nil
}
