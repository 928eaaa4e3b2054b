package chain

// Minimal ABI fragments for the protocol contracts the watcher touches.
// Only the functions actually called are declared; the deployed contracts
// expose far more.

const registryABI = `[
  {"inputs":[{"internalType":"string","name":"_name","type":"string"}],"name":"getContractAddressByName","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

const ftsoRegistryABI = `[
  {"inputs":[{"internalType":"string","name":"_symbol","type":"string"}],"name":"getCurrentPriceWithDecimals","outputs":[{"internalType":"uint256","name":"_price","type":"uint256"},{"internalType":"uint256","name":"_timestamp","type":"uint256"},{"internalType":"uint256","name":"_assetPriceUsdDecimals","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"getSupportedSymbols","outputs":[{"internalType":"string[]","name":"_supportedSymbols","type":"string[]"}],"stateMutability":"view","type":"function"}
]`

const ftsoManagerABI = `[
  {"inputs":[],"name":"getCurrentPriceEpochId","outputs":[{"internalType":"uint256","name":"_priceEpochId","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"getCurrentRewardEpoch","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"getPriceEpochConfiguration","outputs":[{"internalType":"uint256","name":"_firstPriceEpochStartTs","type":"uint256"},{"internalType":"uint256","name":"_priceEpochDurationSeconds","type":"uint256"},{"internalType":"uint256","name":"_revealEpochDurationSeconds","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"rewardEpochDurationSeconds","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"rewardEpochsStartTs","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const ftsoRewardManagerABI = `[
  {"inputs":[{"internalType":"address","name":"_beneficiary","type":"address"}],"name":"getEpochsWithUnclaimedRewards","outputs":[{"internalType":"uint256[]","name":"_epochIds","type":"uint256[]"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_beneficiary","type":"address"},{"internalType":"uint256","name":"_rewardEpoch","type":"uint256"}],"name":"getStateOfRewards","outputs":[{"internalType":"address[]","name":"_dataProviders","type":"address[]"},{"internalType":"uint256[]","name":"_rewardAmounts","type":"uint256[]"},{"internalType":"bool[]","name":"_claimed","type":"bool[]"},{"internalType":"bool","name":"_claimable","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address payable","name":"_recipient","type":"address"},{"internalType":"uint256[]","name":"_rewardEpochs","type":"uint256[]"}],"name":"claimReward","outputs":[{"internalType":"uint256","name":"_rewardAmount","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}
]`

const wnatABI = `[
  {"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_owner","type":"address"}],"name":"votePowerOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_owner","type":"address"}],"name":"delegatesOf","outputs":[{"internalType":"address[]","name":"_delegateAddresses","type":"address[]"},{"internalType":"uint256[]","name":"_bips","type":"uint256[]"},{"internalType":"uint256","name":"_count","type":"uint256"},{"internalType":"uint256","name":"_delegationMode","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_to","type":"address"},{"internalType":"uint256","name":"_bips","type":"uint256"}],"name":"delegate","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"undelegateAll","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Registry names of the contracts above, as registered on-chain.
const (
	nameFtsoRegistry      = "FtsoRegistry"
	nameFtsoManager       = "FtsoManager"
	nameFtsoRewardManager = "FtsoRewardManager"
	nameWNat              = "WNat"
)
