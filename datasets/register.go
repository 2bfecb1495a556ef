package datasets

import (
	"strconv"

	"github.com/davidhoof/visiontrain/data"
)

func numbered(n int) []string {
	classes := make([]string, n)
	for i := range classes {
		classes[i] = strconv.Itoa(i)
	}
	return classes
}

func init() {
	digits := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	fashion := []string{"t-shirt", "trouser", "pullover", "dress", "coat",
		"sandal", "shirt", "sneaker", "bag", "ankle boot"}

	data.Register(data.Info{
		Name: "mnist", NumClasses: 10, InChannels: 1,
		Mean: []float32{0.1307}, Std: []float32{0.3081},
		Load: LoadIDX("mnist", digits),
	})
	data.Register(data.Info{
		Name: "kmnist", NumClasses: 49, InChannels: 1,
		Mean: []float32{0.1918}, Std: []float32{0.3483},
		Load: LoadIDX("kmnist", numbered(49)),
	})
	data.Register(data.Info{
		Name: "fashionmnist", NumClasses: 10, InChannels: 1,
		Mean: []float32{0.2860}, Std: []float32{0.3530},
		Load: LoadIDX("fashionmnist", fashion),
	})
	data.Register(data.Info{
		Name: "cifar10", NumClasses: 10, InChannels: 3,
		Mean: []float32{0.49139968, 0.48215841, 0.44653091},
		Std:  []float32{0.24703223, 0.24348513, 0.26158784},
		Load: LoadCIFAR10,
	})
	data.Register(data.Info{
		Name: "cifar100", NumClasses: 100, InChannels: 3,
		Mean: []float32{0.50707516, 0.48654887, 0.44091784},
		Std:  []float32{0.26733429, 0.25643846, 0.27615047},
		Load: LoadCIFAR100,
	})
	data.Register(data.Info{
		Name: "cinic10", NumClasses: 10, InChannels: 3,
		Mean: []float32{0.47889522, 0.47227842, 0.43047404}, // from https://github.com/BayesWatch/cinic-10
		Std:  []float32{0.24205776, 0.23828046, 0.25874835},
		Load: LoadCINIC10("all"),
	})
	data.Register(data.Info{
		Name: "imagenet1k", NumClasses: 1000, InChannels: 3,
		Mean: []float32{0.485, 0.456, 0.406}, Std: []float32{0.229, 0.224, 0.225},
		Load: LoadImageNet1k,
	})
	data.Register(data.Info{
		Name: "svhn", NumClasses: 10, InChannels: 3,
		Mean: []float32{0.4377, 0.4438, 0.4728}, Std: []float32{0.1980, 0.2010, 0.1970},
		Load: LoadSVHN,
	})
	data.Register(data.Info{
		Name: "tinyimagenet", NumClasses: 200, InChannels: 3,
		Mean: []float32{0.4802, 0.4481, 0.3975}, Std: []float32{0.2764, 0.2689, 0.2816},
		Load: LoadTinyImageNet,
	})
	data.Register(data.Info{
		Name: "grocerystore", NumClasses: 43, InChannels: 3,
		Mean: []float32{0.5525, 0.4104, 0.2445}, Std: []float32{0.2205, 0.1999, 0.1837},
		Load: LoadGroceryStore,
	})
	data.Register(data.Info{
		Name: "sun397", NumClasses: 899, InChannels: 3,
		Mean: []float32{0.485, 0.456, 0.406}, Std: []float32{0.229, 0.224, 0.225},
		Load: LoadSUN397,
	})
	data.Register(data.Info{
		Name: "histaerial25x25", NumClasses: 7, InChannels: 3,
		Mean: []float32{0.5525, 0.4104, 0.2445}, Std: []float32{0.2205, 0.1999, 0.1837},
		Load: LoadHistAerial("25x25"),
	})
	data.Register(data.Info{
		Name: "histaerial50x50", NumClasses: 7, InChannels: 3,
		Mean: []float32{0.4625, 0.4625, 0.4625}, Std: []float32{0.2764, 0.2764, 0.2764},
		Load: LoadHistAerial("50x50"),
	})
	data.Register(data.Info{
		Name: "histaerial100x100", NumClasses: 42, InChannels: 3,
		Mean: []float32{0.4616, 0.4616, 0.4616}, Std: []float32{0.2759, 0.2759, 0.2759},
		Load: LoadHistAerial("100x100"),
	})
	data.Register(data.Info{
		Name: "fractaldb60", NumClasses: 60, InChannels: 3,
		Mean: []float32{0.0622, 0.0622, 0.0622}, Std: []float32{0.1646, 0.1646, 0.1646},
		Load: LoadFractalDB60,
	})
}
